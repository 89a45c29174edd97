package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusApproved  TransactionStatus = "approved"
	TransactionStatusSettled   TransactionStatus = "settled"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// IsValid reports whether s is a known transaction status.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusApproved, TransactionStatusSettled, TransactionStatusCancelled:
		return true
	}
	return false
}

// IsUnsettled reports whether the status still blocks leaving or deleting a group.
func (s TransactionStatus) IsUnsettled() bool {
	return s == TransactionStatusPending || s == TransactionStatusApproved
}

type SplitMethod string

const (
	SplitMethodEqual      SplitMethod = "equal"
	SplitMethodExact      SplitMethod = "exact"
	SplitMethodPercentage SplitMethod = "percentage"
)

// IsValid reports whether m is a supported split method.
func (m SplitMethod) IsValid() bool {
	switch m {
	case SplitMethodEqual, SplitMethodExact, SplitMethodPercentage:
		return true
	}
	return false
}

type TransactionCategory string

const (
	CategoryFood           TransactionCategory = "food"
	CategoryTransportation TransactionCategory = "transportation"
	CategoryAccommodation  TransactionCategory = "accommodation"
	CategoryEntertainment  TransactionCategory = "entertainment"
	CategoryShopping       TransactionCategory = "shopping"
	CategoryUtilities      TransactionCategory = "utilities"
	CategoryHealthcare     TransactionCategory = "healthcare"
	CategoryOther          TransactionCategory = "other"
)

// IsValid reports whether c is a known expense category.
func (c TransactionCategory) IsValid() bool {
	switch c {
	case CategoryFood, CategoryTransportation, CategoryAccommodation, CategoryEntertainment,
		CategoryShopping, CategoryUtilities, CategoryHealthcare, CategoryOther:
		return true
	}
	return false
}

type RecurringFrequency string

const (
	FrequencyWeekly  RecurringFrequency = "weekly"
	FrequencyMonthly RecurringFrequency = "monthly"
	FrequencyYearly  RecurringFrequency = "yearly"
)

// IsValid reports whether f is a supported recurrence.
func (f RecurringFrequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Participant is one user's share of a transaction.
type Participant struct {
	UserID     string           `json:"userId"`
	Amount     decimal.Decimal  `json:"amount"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
	Paid       bool             `json:"paid"`
	PaidAt     *time.Time       `json:"paidAt,omitempty"`
}

// Item is a line of an itemized receipt.
type Item struct {
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	AssigneeIDs []string        `json:"assigneeIds"`
}

// UnmarshalJSON accepts assignees as bare ids or {"user": id} objects and
// treats a missing or zero quantity as one.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name        string          `json:"name"`
		UnitPrice   decimal.Decimal `json:"unitPrice"`
		Price       decimal.Decimal `json:"price"`
		Quantity    *int            `json:"quantity"`
		AssigneeIDs []UserRef       `json:"assigneeIds"`
		Assignees   []UserRef       `json:"assignees"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	it.Name = raw.Name
	it.UnitPrice = raw.UnitPrice
	if it.UnitPrice.IsZero() {
		it.UnitPrice = raw.Price
	}
	it.Quantity = 1
	if raw.Quantity != nil && *raw.Quantity != 0 {
		it.Quantity = *raw.Quantity
	}

	refs := raw.AssigneeIDs
	if len(refs) == 0 {
		refs = raw.Assignees
	}
	it.AssigneeIDs = make([]string, 0, len(refs))
	for _, r := range refs {
		it.AssigneeIDs = append(it.AssigneeIDs, string(r))
	}
	return nil
}

// LineTotal is unit price times quantity; a zero quantity counts as one.
func (it Item) LineTotal() decimal.Decimal {
	qty := it.Quantity
	if qty == 0 {
		qty = 1
	}
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

type Approval struct {
	UserID     string    `json:"userId"`
	Approved   bool      `json:"approved"`
	Comment    string    `json:"comment,omitempty"`
	ApprovedAt time.Time `json:"approvedAt"`
}

type ScannedItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type ScannedReceipt struct {
	Vendor string          `json:"vendor,omitempty"`
	Total  decimal.Decimal `json:"total"`
	Items  []ScannedItem   `json:"items,omitempty"`
	Date   *time.Time      `json:"date,omitempty"`
}

type Receipt struct {
	ImageURL    string          `json:"imageUrl,omitempty"`
	ObjectKey   string          `json:"objectKey,omitempty"`
	ContentType string          `json:"contentType,omitempty"`
	UploadedAt  *time.Time      `json:"uploadedAt,omitempty"`
	ScannedData *ScannedReceipt `json:"scannedData,omitempty"`
}

type Location struct {
	Name      string   `json:"name,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type Recurring struct {
	IsRecurring bool               `json:"isRecurring"`
	Frequency   RecurringFrequency `json:"frequency,omitempty"`
	NextDueDate *time.Time         `json:"nextDueDate,omitempty"`
	EndDate     *time.Time         `json:"endDate,omitempty"`
}

// Transaction is a shared expense paid by one user and split among participants.
type Transaction struct {
	ID           string              `json:"id"`
	Description  string              `json:"description"`
	TotalAmount  decimal.Decimal     `json:"totalAmount"`
	Currency     string              `json:"currency"`
	PayerID      string              `json:"payerId"`
	GroupID      *string             `json:"groupId,omitempty"`
	Category     TransactionCategory `json:"category"`
	SplitMethod  SplitMethod         `json:"splitMethod"`
	Participants []Participant       `json:"participants"`
	Items        []Item              `json:"items,omitempty"`
	Status       TransactionStatus   `json:"status"`
	Approvals    []Approval          `json:"approvals"`
	Receipt      *Receipt            `json:"receipt,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	Tags         []string            `json:"tags,omitempty"`
	Location     *Location           `json:"location,omitempty"`
	Recurring    *Recurring          `json:"recurring,omitempty"`
	SettledAt    *time.Time          `json:"settledAt,omitempty"`
	CreatedBy    string              `json:"createdBy"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// Participant returns a pointer to the share of userID, or nil.
func (t *Transaction) Participant(userID string) *Participant {
	for i := range t.Participants {
		if t.Participants[i].UserID == userID {
			return &t.Participants[i]
		}
	}
	return nil
}

// IsParticipant reports whether userID has a share in t.
func (t *Transaction) IsParticipant(userID string) bool {
	return t.Participant(userID) != nil
}

// Involves reports whether userID paid for, created or takes part in t.
func (t *Transaction) Involves(userID string) bool {
	return t.PayerID == userID || t.CreatedBy == userID || t.IsParticipant(userID)
}

// ParticipantIDs lists participant user ids in order.
func (t *Transaction) ParticipantIDs() []string {
	ids := make([]string, 0, len(t.Participants))
	for _, p := range t.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// TotalOwed is the sum of all participant amounts.
func (t *Transaction) TotalOwed() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range t.Participants {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// PaidAmount is the sum of amounts of participants marked paid.
func (t *Transaction) PaidAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range t.Participants {
		if p.Paid {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

// RemainingAmount is the total minus what participants have paid.
func (t *Transaction) RemainingAmount() decimal.Decimal {
	return t.TotalAmount.Sub(t.PaidAmount())
}

// CompletionPercentage is the paid share of the total as a whole percentage.
func (t *Transaction) CompletionPercentage() int64 {
	if t.TotalAmount.IsZero() {
		return 100
	}
	return t.PaidAmount().Div(t.TotalAmount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// NeedsApproval is true while nobody has voted on a pending transaction.
func (t *Transaction) NeedsApproval() bool {
	return t.Status == TransactionStatusPending && len(t.Approvals) == 0
}

// MarshalJSON adds the derived amounts to the stored fields.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type stored Transaction
	return json.Marshal(struct {
		stored
		TotalOwed            decimal.Decimal `json:"totalOwed"`
		RemainingAmount      decimal.Decimal `json:"remainingAmount"`
		CompletionPercentage int64           `json:"completionPercentage"`
		NeedsApproval        bool            `json:"needsApproval"`
	}{
		stored:               stored(t),
		TotalOwed:            t.TotalOwed(),
		RemainingAmount:      t.RemainingAmount(),
		CompletionPercentage: t.CompletionPercentage(),
		NeedsApproval:        t.NeedsApproval(),
	})
}

// UserRef is a user id that decodes from either a bare string or an object
// carrying the id under "user", "userId", "id" or "_id".
type UserRef string

func (r *UserRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*r = UserRef(strings.TrimSpace(id))
		return nil
	}

	var obj struct {
		User    *UserRef `json:"user"`
		UserID  string   `json:"userId"`
		ID      string   `json:"id"`
		MongoID string   `json:"_id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("user reference must be a string or an object: %w", err)
	}
	switch {
	case obj.User != nil:
		*r = *obj.User
	case obj.UserID != "":
		*r = UserRef(obj.UserID)
	case obj.ID != "":
		*r = UserRef(obj.ID)
	default:
		*r = UserRef(obj.MongoID)
	}
	*r = UserRef(strings.TrimSpace(string(*r)))
	return nil
}

// ParticipantInput is a participant as sent by clients, normalized to one shape.
type ParticipantInput struct {
	UserID     string           `json:"userId"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

// UnmarshalJSON accepts "id", {"user": "id", ...} and {"userId": "id", ...}.
func (p *ParticipantInput) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*p = ParticipantInput{UserID: strings.TrimSpace(id)}
		return nil
	}

	var raw struct {
		User       *UserRef         `json:"user"`
		UserID     string           `json:"userId"`
		Amount     *decimal.Decimal `json:"amount"`
		Percentage *decimal.Decimal `json:"percentage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("participant must be a user id or an object: %w", err)
	}

	p.UserID = strings.TrimSpace(raw.UserID)
	if raw.User != nil {
		p.UserID = string(*raw.User)
	}
	p.Amount = raw.Amount
	p.Percentage = raw.Percentage
	return nil
}

type CreateTransactionRequest struct {
	Description  string              `json:"description"`
	TotalAmount  decimal.Decimal     `json:"totalAmount"`
	Currency     string              `json:"currency"`
	PayerID      string              `json:"payerId"`
	GroupID      *string             `json:"groupId,omitempty"`
	Category     TransactionCategory `json:"category"`
	SplitMethod  SplitMethod         `json:"splitMethod"`
	Participants []ParticipantInput  `json:"participants"`
	Items        []Item              `json:"items,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	Tags         []string            `json:"tags,omitempty"`
	Location     *Location           `json:"location,omitempty"`
	Recurring    *Recurring          `json:"recurring,omitempty"`
}

// UpdateTransactionRequest is a partial update. Nil fields are left unchanged.
type UpdateTransactionRequest struct {
	Description  *string              `json:"description,omitempty"`
	TotalAmount  *decimal.Decimal     `json:"totalAmount,omitempty"`
	Currency     *string              `json:"currency,omitempty"`
	Category     *TransactionCategory `json:"category,omitempty"`
	SplitMethod  *SplitMethod         `json:"splitMethod,omitempty"`
	Participants []ParticipantInput   `json:"participants,omitempty"`
	Notes        *string              `json:"notes,omitempty"`
	Tags         []string             `json:"tags,omitempty"`
	Status       *TransactionStatus   `json:"status,omitempty"`
	Receipt      *Receipt             `json:"receipt,omitempty"`
	Location     *Location            `json:"location,omitempty"`
	Recurring    *Recurring           `json:"recurring,omitempty"`
}

// RecomputesSplit reports whether the update touches the split inputs.
func (r *UpdateTransactionRequest) RecomputesSplit() bool {
	return r.TotalAmount != nil || r.SplitMethod != nil || r.Participants != nil
}

type PaymentRequest struct {
	// UserID is the participant being marked. Defaults to the caller.
	UserID string `json:"userId"`
	Paid   *bool  `json:"paid"`
}

type ApprovalRequest struct {
	Approved *bool  `json:"approved" binding:"required"`
	Comment  string `json:"comment"`
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	// VisibleTo limits results to transactions the user paid, created or takes part in.
	VisibleTo     string
	GroupID       string
	PayerID       string
	ParticipantID string
	Status        TransactionStatus
	Category      TransactionCategory
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	Limit         int
}

// Offset returns the number of rows to skip for the filter's page.
func (f TransactionFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type TransactionPage struct {
	Total        int            `json:"total"`
	Page         int            `json:"page"`
	Pages        int            `json:"pages"`
	Transactions []*Transaction `json:"transactions"`
}
