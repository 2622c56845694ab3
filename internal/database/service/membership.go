package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/overseer/internal/database/models"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// MemberCounter looks up the current member count of a group on the chat platform.
type MemberCounter interface {
	MemberCount(ctx context.Context, groupID int64) (int, error)
}

// MembershipService reconciles group counters with platform membership events.
type MembershipService struct {
	model  *models.GroupModel
	logger *zap.Logger
}

// NewMembership creates a new membership service.
func NewMembership(model *models.GroupModel, logger *zap.Logger) *MembershipService {
	return &MembershipService{
		model:  model,
		logger: logger.Named("membership_service"),
	}
}

// HandleBotAdded registers a group the bot was added to and records its member count.
func (s *MembershipService) HandleBotAdded(
	ctx context.Context, groupID int64, title string, counter MemberCounter,
) (*types.GroupAnalytics, error) {
	total := s.lookupTotal(ctx, groupID, counter)
	now := time.Now()

	var analytics *types.GroupAnalytics

	err := s.model.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error

		analytics, err = s.model.GetOrCreate(ctx, tx, groupID, title, now)
		if err != nil {
			return err
		}

		if total != nil {
			analytics.TotalMembers = *total
		}
		analytics.LastUpdated = now.UTC()

		return s.model.SaveCounters(ctx, tx, analytics)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register group: %w", err)
	}

	s.logger.Info("Bot added to group",
		zap.Int64("group_id", groupID),
		zap.String("title", title),
		zap.Int("total", analytics.TotalMembers))

	return analytics, nil
}

// TargetStatus maps a platform transition to the stored status it should produce.
// The platform reports "left" for removals performed by someone else, so a left
// event whose initiator is not the member is classified as a kick. This is a
// heuristic over what the platform exposes, not a guarantee. The second return
// value is false for transitions that carry no membership change.
func TargetStatus(event types.MemberEvent) (enum.MemberStatus, bool) {
	switch {
	case event.NewStatus == enum.ChatMemberStatusKicked:
		return enum.MemberStatusKicked, true
	case event.NewStatus == enum.ChatMemberStatusLeft:
		if event.InitiatorID != 0 && event.InitiatorID != event.Member.TelegramID {
			return enum.MemberStatusKicked, true
		}
		return enum.MemberStatusLeft, true
	case event.NewStatus.IsPresent() && event.OldStatus.IsGone():
		return enum.MemberStatusActive, true
	default:
		return "", false
	}
}

// HandleMemberUpdate applies one membership event. Each member contributes to
// exactly one counter matching its stored status, so replaying an event leaves
// the counters untouched.
func (s *MembershipService) HandleMemberUpdate(
	ctx context.Context, event types.MemberEvent, counter MemberCounter,
) (*types.MemberChange, error) {
	target, ok := TargetStatus(event)
	if !ok {
		return nil, nil //nolint:nilnil // nothing to reconcile
	}

	total := s.lookupTotal(ctx, event.GroupID, counter)
	now := time.Now().UTC()

	var change *types.MemberChange

	err := s.model.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		analytics, err := s.model.GetOrCreate(ctx, tx, event.GroupID, event.GroupTitle, now)
		if err != nil {
			return err
		}

		member, err := s.model.GetMember(ctx, tx, analytics.ID, event.Member.TelegramID)
		if err != nil {
			return err
		}

		// Returning members are only tracked when they were seen leaving
		if target == enum.MemberStatusActive && member == nil {
			change = &types.MemberChange{Group: analytics, Status: target}
			return nil
		}

		var prior enum.MemberStatus
		if member == nil {
			member = &types.GroupMember{
				GroupID:    analytics.ID,
				TelegramID: event.Member.TelegramID,
			}
		} else {
			prior = member.Status
		}

		changed := prior != target
		if changed {
			adjustCounter(analytics, prior, -1)
			adjustCounter(analytics, target, 1)
		}

		// Without a platform count every departure takes one off the total,
		// replays included; only a real rejoin adds one back.
		switch {
		case total != nil:
			analytics.TotalMembers = *total
		case target != enum.MemberStatusActive:
			analytics.TotalMembers = max(analytics.TotalMembers-1, 0)
		case changed:
			analytics.TotalMembers++
		}
		analytics.LastUpdated = now

		if event.Member.Username != "" {
			member.Username = event.Member.Username
		}
		if event.Member.FirstName != "" {
			member.FirstName = event.Member.FirstName
		}
		member.Status = target
		member.UpdatedAt = now

		if target == enum.MemberStatusActive {
			member.LeftAt = nil
		} else if changed || member.LeftAt == nil {
			member.LeftAt = &now
		}

		if err := s.model.SaveMember(ctx, tx, member); err != nil {
			return err
		}

		if err := s.model.SaveCounters(ctx, tx, analytics); err != nil {
			return err
		}

		change = &types.MemberChange{
			Group:   analytics,
			Member:  member,
			Prior:   prior,
			Status:  target,
			Changed: changed,
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile member update: %w", err)
	}

	s.logger.Info("Member status reconciled",
		zap.Int64("group_id", event.GroupID),
		zap.Int64("member_id", event.Member.TelegramID),
		zap.Int64("initiator_id", event.InitiatorID),
		zap.String("old_status", string(event.OldStatus)),
		zap.String("new_status", string(event.NewStatus)),
		zap.String("stored_status", target.String()),
		zap.Bool("changed", change.Changed))

	return change, nil
}

// GetReports refreshes the member count of every tracked group and returns
// each group with its departed members.
func (s *MembershipService) GetReports(ctx context.Context, counter MemberCounter) ([]*types.GroupReport, error) {
	groups, err := s.model.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]*types.GroupReport, 0, len(groups))
	for _, group := range groups {
		if total := s.lookupTotal(ctx, group.GroupID, counter); total != nil && *total != group.TotalMembers {
			if err := s.model.UpdateTotal(ctx, group.ID, *total); err != nil {
				s.logger.Warn("Failed to store refreshed member count",
					zap.Int64("group_id", group.GroupID),
					zap.Error(err))
			} else {
				group.TotalMembers = *total
			}
		}

		members, err := s.model.GetDepartedMembers(ctx, group.ID)
		if err != nil {
			return nil, err
		}

		report := &types.GroupReport{Group: group}
		for _, member := range members {
			if member.Status == enum.MemberStatusKicked {
				report.Kicked = append(report.Kicked, member)
			} else {
				report.Left = append(report.Left, member)
			}
		}

		reports = append(reports, report)
	}

	return reports, nil
}

// lookupTotal asks the platform for the member count, returning nil on failure.
func (s *MembershipService) lookupTotal(ctx context.Context, groupID int64, counter MemberCounter) *int {
	if counter == nil {
		return nil
	}

	total, err := counter.MemberCount(ctx, groupID)
	if err != nil {
		s.logger.Warn("Failed to get member count",
			zap.Int64("group_id", groupID),
			zap.Error(err))
		return nil
	}

	return &total
}

// adjustCounter moves the counter matching status by delta, never below zero.
func adjustCounter(analytics *types.GroupAnalytics, status enum.MemberStatus, delta int) {
	switch status {
	case enum.MemberStatusLeft:
		analytics.LeftMembers = max(analytics.LeftMembers+delta, 0)
	case enum.MemberStatusKicked:
		analytics.KickedMembers = max(analytics.KickedMembers+delta, 0)
	case enum.MemberStatusActive:
	}
}
