package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/models/expense"
	"github.com/NomadCrew/nomad-split-backend/models/shared"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize    = 10
	maxPageSize        = 50
	recentTransactions = 10
	maxNameLength      = 100
	maxDescLength      = 500
)

// InviteConfig controls how invite links are signed and rendered.
type InviteConfig struct {
	Secret      string
	TTL         time.Duration
	FrontendURL string
}

// GroupService manages groups, their members and invite links.
type GroupService struct {
	store    store.Store
	balances *expense.BalanceAggregator
	events   *shared.EventEmitter
	invites  InviteConfig
	now      func() time.Time
}

func NewGroupService(st store.Store, publisher types.EventPublisher, invites InviteConfig) *GroupService {
	return &GroupService{
		store:    st,
		balances: expense.NewBalanceAggregator(st.Transactions(), st.Groups()),
		events:   shared.NewEventEmitter(publisher, "group-service"),
		invites:  invites,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.ValidationFailed("Group name is required", "")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", apperrors.ValidationFailed("Group name is too long", "maximum 100 characters")
	}
	return name, nil
}

func validateDescription(desc string) (string, error) {
	desc = strings.TrimSpace(desc)
	if utf8.RuneCountInString(desc) > maxDescLength {
		return "", apperrors.ValidationFailed("Group description is too long", "maximum 500 characters")
	}
	return desc, nil
}

func validateCategory(c types.GroupCategory) (types.GroupCategory, error) {
	if c == "" {
		return types.GroupCategoryOther, nil
	}
	if !c.IsValid() {
		return "", apperrors.ValidationFailed("Invalid group category", string(c))
	}
	return c, nil
}

func validateCurrency(code string) (string, error) {
	currency, ok := shared.NormalizeCurrency(code)
	if !ok {
		return "", apperrors.ValidationFailed("Unsupported currency", code)
	}
	return currency, nil
}

func validateSettings(s types.GroupSettings) (types.GroupSettings, error) {
	if s.DefaultSplitMethod == "" {
		s.DefaultSplitMethod = types.SplitMethodEqual
	}
	if !s.DefaultSplitMethod.IsValid() {
		return s, apperrors.ValidationFailed("Invalid default split method", string(s.DefaultSplitMethod))
	}
	return s, nil
}

// load returns an active group and checks that userID belongs to it.
func (s *GroupService) load(ctx context.Context, userID, groupID string) (*types.Group, error) {
	group, err := s.store.Groups().GetByID(ctx, groupID)
	if err != nil {
		return nil, shared.FromStore(err, "Group", groupID)
	}
	if err := shared.RequireMember(group, userID); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroups returns the active groups of userID, most recently active first.
func (s *GroupService) ListGroups(ctx context.Context, userID string, page, limit int) (*types.GroupPage, error) {
	page, limit = shared.Page(page, limit, defaultPageSize, maxPageSize)

	groups, total, err := s.store.Groups().ListByMember(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, shared.FromStore(err, "Group", "")
	}
	return &types.GroupPage{
		Groups: groups,
		Total:  total,
		Page:   page,
		Pages:  types.PageCount(total, limit),
	}, nil
}

// GetGroup returns a group with its latest transactions and spending stats.
func (s *GroupService) GetGroup(ctx context.Context, userID, groupID string) (*types.GroupDetail, error) {
	group, err := s.load(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	recent, err := s.store.Transactions().ListRecentByGroup(ctx, groupID, recentTransactions)
	if err != nil {
		return nil, shared.FromStore(err, "Transaction", "")
	}
	totals, err := s.store.Transactions().GroupTotals(ctx, groupID)
	if err != nil {
		return nil, shared.FromStore(err, "Group", groupID)
	}

	stats := types.GroupStats{
		TotalExpenses:    totals.Total,
		TransactionCount: totals.Count,
		AverageExpense:   decimal.Zero,
	}
	if totals.Count > 0 {
		stats.AverageExpense = totals.Total.DivRound(decimal.NewFromInt(int64(totals.Count)), 2)
	}

	return &types.GroupDetail{
		Group:              group,
		RecentTransactions: recent,
		Stats:              stats,
	}, nil
}

// CreateGroup creates a group owned by userID. Member emails that match no user
// are skipped and reported in the result.
func (s *GroupService) CreateGroup(ctx context.Context, userID string, req *types.CreateGroupRequest) (*types.CreateGroupResult, error) {
	name, err := validateName(req.Name)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(req.Description)
	if err != nil {
		return nil, err
	}
	category, err := validateCategory(req.Category)
	if err != nil {
		return nil, err
	}
	currency, err := validateCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	settings := types.DefaultGroupSettings()
	if req.Settings != nil {
		if settings, err = validateSettings(*req.Settings); err != nil {
			return nil, err
		}
	}

	now := s.now()
	group := &types.Group{
		ID:              uuid.NewString(),
		Name:            name,
		Description:     description,
		CreatedBy:       userID,
		Members:         []types.GroupMember{{UserID: userID, Role: types.GroupRoleAdmin, JoinedAt: now}},
		Currency:        currency,
		Category:        category,
		IsActive:        true,
		TotalExpenses:   decimal.Zero,
		SettledExpenses: decimal.Zero,
		LastActivity:    now,
		Settings:        settings,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	result := &types.CreateGroupResult{Group: group}
	seen := map[string]bool{}
	for _, raw := range req.MemberEmails {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true

		user, err := s.store.Users().GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				result.NotFoundEmails = append(result.NotFoundEmails, email)
				continue
			}
			return nil, shared.FromStore(err, "User", email)
		}
		if group.IsMember(user.ID) {
			continue
		}
		group.Members = append(group.Members, types.GroupMember{
			UserID:   user.ID,
			Role:     types.GroupRoleMember,
			JoinedAt: now,
		})
		result.AddedMemberIDs = append(result.AddedMemberIDs, user.ID)
	}

	if err := s.store.Groups().Create(ctx, group); err != nil {
		return nil, shared.FromStore(err, "Group", group.ID)
	}

	for _, id := range result.AddedMemberIDs {
		s.events.Emit(ctx, types.EventTypeMemberAdded, group.ID, id,
			types.MemberEventPayload{MemberID: id, ActorID: userID})
	}

	logger.GetLogger().Infow("Group created",
		"groupID", group.ID,
		"members", len(group.Members),
		"unknownEmails", len(result.NotFoundEmails))
	return result, nil
}

// UpdateGroup patches the group's details. Admins only.
func (s *GroupService) UpdateGroup(ctx context.Context, userID, groupID string, req *types.UpdateGroupRequest) (*types.Group, error) {
	group, err := s.load(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}
	if err := shared.RequireAdmin(group, userID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		if group.Name, err = validateName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if group.Description, err = validateDescription(*req.Description); err != nil {
			return nil, err
		}
	}
	if req.Currency != nil {
		if group.Currency, err = validateCurrency(*req.Currency); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		if group.Category, err = validateCategory(*req.Category); err != nil {
			return nil, err
		}
	}
	if req.Settings != nil {
		if group.Settings, err = validateSettings(*req.Settings); err != nil {
			return nil, err
		}
	}

	group.UpdatedAt = s.now()
	if err := s.store.Groups().Update(ctx, group); err != nil {
		return nil, shared.FromStore(err, "Group", groupID)
	}
	return group, nil
}

// DeleteGroup deactivates a group. Admins only, and only once every expense
// in it is settled or cancelled.
func (s *GroupService) DeleteGroup(ctx context.Context, userID, groupID string) error {
	group, err := s.load(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if err := shared.RequireAdmin(group, userID); err != nil {
		return err
	}

	n, err := s.store.Transactions().CountUnsettled(ctx, groupID, "")
	if err != nil {
		return shared.FromStore(err, "Transaction", "")
	}
	if n > 0 {
		return apperrors.SettlementBlocked("Cannot delete a group with unsettled transactions", n)
	}

	if err := s.store.Groups().SoftDelete(ctx, groupID); err != nil {
		return shared.FromStore(err, "Group", groupID)
	}
	logger.GetLogger().Infow("Group deleted", "groupID", groupID, "userID", userID)
	return nil
}

// GetGroupBalances returns every member's balance in the group.
func (s *GroupService) GetGroupBalances(ctx context.Context, userID, groupID string) ([]types.GroupBalance, error) {
	group, err := s.load(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	balances := make([]types.GroupBalance, 0, len(group.Members))
	for _, id := range group.MemberIDs() {
		b, err := s.balances.UserGroupBalance(ctx, id, groupID)
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		b.GroupName = group.Name
		balances = append(balances, b)
	}
	return balances, nil
}

// GetMemberBalance returns one member's balance in the group.
func (s *GroupService) GetMemberBalance(ctx context.Context, userID, groupID, memberID string) (types.GroupBalance, error) {
	group, err := s.load(ctx, userID, groupID)
	if err != nil {
		return types.GroupBalance{}, err
	}
	if !group.IsMember(memberID) {
		return types.GroupBalance{}, apperrors.NotFound("Group member", memberID)
	}

	b, err := s.balances.UserGroupBalance(ctx, memberID, groupID)
	if err != nil {
		return types.GroupBalance{}, apperrors.NewDatabaseError(err)
	}
	b.GroupName = group.Name
	return b, nil
}
