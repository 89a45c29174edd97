package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

type GroupRole string

const (
	GroupRoleAdmin  GroupRole = "admin"
	GroupRoleMember GroupRole = "member"
)

type GroupCategory string

const (
	GroupCategoryTrip   GroupCategory = "trip"
	GroupCategoryHome   GroupCategory = "home"
	GroupCategoryCouple GroupCategory = "couple"
	GroupCategoryOther  GroupCategory = "other"
)

// IsValid reports whether c is a known group category.
func (c GroupCategory) IsValid() bool {
	switch c {
	case GroupCategoryTrip, GroupCategoryHome, GroupCategoryCouple, GroupCategoryOther:
		return true
	}
	return false
}

type GroupMember struct {
	UserID   string    `json:"userId"`
	Role     GroupRole `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type GroupSettings struct {
	RequireApproval    bool        `json:"requireApproval"`
	AllowMemberInvites bool        `json:"allowMemberInvites"`
	DefaultSplitMethod SplitMethod `json:"defaultSplitMethod"`
}

// DefaultGroupSettings returns the settings a new group starts with.
func DefaultGroupSettings() GroupSettings {
	return GroupSettings{
		AllowMemberInvites: true,
		DefaultSplitMethod: SplitMethodEqual,
	}
}

type Group struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	CreatedBy       string          `json:"createdBy"`
	Members         []GroupMember   `json:"members"`
	Currency        string          `json:"currency"`
	Category        GroupCategory   `json:"category"`
	IsActive        bool            `json:"isActive"`
	TotalExpenses   decimal.Decimal `json:"totalExpenses"`
	SettledExpenses decimal.Decimal `json:"settledExpenses"`
	LastActivity    time.Time       `json:"lastActivity"`
	Settings        GroupSettings   `json:"settings"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Member returns the membership entry for userID.
func (g *Group) Member(userID string) (GroupMember, bool) {
	for _, m := range g.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return GroupMember{}, false
}

// IsMember reports whether userID belongs to the group.
func (g *Group) IsMember(userID string) bool {
	_, ok := g.Member(userID)
	return ok
}

// IsAdmin reports whether userID is an admin of the group.
func (g *Group) IsAdmin(userID string) bool {
	m, ok := g.Member(userID)
	return ok && m.Role == GroupRoleAdmin
}

// MemberIDs lists the user ids of all members in join order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// UnsettledAmount is the part of the group's expenses that is not yet settled.
func (g *Group) UnsettledAmount() decimal.Decimal {
	return g.TotalExpenses.Sub(g.SettledExpenses)
}

type CreateGroupRequest struct {
	Name         string         `json:"name" binding:"required"`
	Description  string         `json:"description"`
	Currency     string         `json:"currency"`
	Category     GroupCategory  `json:"category"`
	Settings     *GroupSettings `json:"settings,omitempty"`
	MemberEmails []string       `json:"memberEmails"`
}

type UpdateGroupRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Currency    *string        `json:"currency,omitempty"`
	Category    *GroupCategory `json:"category,omitempty"`
	Settings    *GroupSettings `json:"settings,omitempty"`
}

// CreateGroupResult reports the created group and any member emails that matched no user.
type CreateGroupResult struct {
	Group          *Group   `json:"group"`
	NotFoundEmails []string `json:"notFoundEmails,omitempty"`
	AddedMemberIDs []string `json:"addedMemberIds,omitempty"`
}

type GroupStats struct {
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	TransactionCount int             `json:"transactionCount"`
	AverageExpense   decimal.Decimal `json:"averageExpense"`
}

type GroupDetail struct {
	Group              *Group         `json:"group"`
	RecentTransactions []*Transaction `json:"recentTransactions"`
	Stats              GroupStats     `json:"stats"`
}

type GroupPage struct {
	Groups []*Group `json:"groups"`
	Total  int      `json:"total"`
	Page   int      `json:"page"`
	Pages  int      `json:"pages"`
}

// GroupInvite is the response of an invite-token request.
type GroupInvite struct {
	Token     string    `json:"token"`
	GroupID   string    `json:"groupId"`
	ExpiresAt time.Time `json:"expiresAt"`
	URL       string    `json:"url,omitempty"`
}

type JoinGroupRequest struct {
	Token string `json:"token" binding:"required"`
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required"`
}

// GroupInviteClaims is the payload of a signed group invite link.
type GroupInviteClaims struct {
	GroupID   string `json:"groupId"`
	InviterID string `json:"inviterId"`
	jwt.RegisteredClaims
}
