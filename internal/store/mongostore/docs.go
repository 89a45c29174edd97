package mongostore

import (
	"strings"
	"time"

	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Amounts reaching the store have at most two decimal places, well within
// Decimal128 precision.
func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

type userDoc struct {
	ID             string                `bson:"_id"`
	Name           string                `bson:"name"`
	Email          string                `bson:"email"`
	EmailLower     string                `bson:"emailLower"`
	Avatar         string                `bson:"avatar"`
	PhoneNumber    string                `bson:"phoneNumber"`
	Preferences    types.UserPreferences `bson:"preferences"`
	PaymentMethods []types.PaymentMethod `bson:"paymentMethods"`
	LastActive     time.Time             `bson:"lastActive"`
	CreatedAt      time.Time             `bson:"createdAt"`
	UpdatedAt      time.Time             `bson:"updatedAt"`
}

func newUserDoc(u *types.User) userDoc {
	pm := u.PaymentMethods
	if pm == nil {
		pm = []types.PaymentMethod{}
	}
	return userDoc{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		EmailLower:     strings.ToLower(u.Email),
		Avatar:         u.Avatar,
		PhoneNumber:    u.PhoneNumber,
		Preferences:    u.Preferences,
		PaymentMethods: pm,
		LastActive:     u.LastActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (d userDoc) toUser() *types.User {
	pm := d.PaymentMethods
	if pm == nil {
		pm = []types.PaymentMethod{}
	}
	return &types.User{
		ID:             d.ID,
		Name:           d.Name,
		Email:          d.Email,
		Avatar:         d.Avatar,
		PhoneNumber:    d.PhoneNumber,
		Preferences:    d.Preferences,
		PaymentMethods: pm,
		LastActive:     d.LastActive,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type memberDoc struct {
	UserID   string    `bson:"userId"`
	Role     string    `bson:"role"`
	JoinedAt time.Time `bson:"joinedAt"`
}

type groupDoc struct {
	ID              string               `bson:"_id"`
	Name            string               `bson:"name"`
	Description     string               `bson:"description"`
	CreatedBy       string               `bson:"createdBy"`
	Members         []memberDoc          `bson:"members"`
	Currency        string               `bson:"currency"`
	Category        string               `bson:"category"`
	IsActive        bool                 `bson:"isActive"`
	TotalExpenses   primitive.Decimal128 `bson:"totalExpenses"`
	SettledExpenses primitive.Decimal128 `bson:"settledExpenses"`
	LastActivity    time.Time            `bson:"lastActivity"`
	Settings        types.GroupSettings  `bson:"settings"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func newMemberDoc(m types.GroupMember) memberDoc {
	return memberDoc{UserID: m.UserID, Role: string(m.Role), JoinedAt: m.JoinedAt}
}

func newGroupDoc(g *types.Group) groupDoc {
	members := make([]memberDoc, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, newMemberDoc(m))
	}
	return groupDoc{
		ID:              g.ID,
		Name:            g.Name,
		Description:     g.Description,
		CreatedBy:       g.CreatedBy,
		Members:         members,
		Currency:        g.Currency,
		Category:        string(g.Category),
		IsActive:        g.IsActive,
		TotalExpenses:   toDecimal128(g.TotalExpenses),
		SettledExpenses: toDecimal128(g.SettledExpenses),
		LastActivity:    g.LastActivity,
		Settings:        g.Settings,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
	}
}

func (d groupDoc) toGroup() *types.Group {
	members := make([]types.GroupMember, 0, len(d.Members))
	for _, m := range d.Members {
		members = append(members, types.GroupMember{
			UserID:   m.UserID,
			Role:     types.GroupRole(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}
	return &types.Group{
		ID:              d.ID,
		Name:            d.Name,
		Description:     d.Description,
		CreatedBy:       d.CreatedBy,
		Members:         members,
		Currency:        d.Currency,
		Category:        types.GroupCategory(d.Category),
		IsActive:        d.IsActive,
		TotalExpenses:   fromDecimal128(d.TotalExpenses),
		SettledExpenses: fromDecimal128(d.SettledExpenses),
		LastActivity:    d.LastActivity,
		Settings:        d.Settings,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type participantDoc struct {
	UserID     string                `bson:"userId"`
	Amount     primitive.Decimal128  `bson:"amount"`
	Percentage *primitive.Decimal128 `bson:"percentage,omitempty"`
	Paid       bool                  `bson:"paid"`
	PaidAt     *time.Time            `bson:"paidAt,omitempty"`
}

type itemDoc struct {
	Name        string               `bson:"name"`
	UnitPrice   primitive.Decimal128 `bson:"unitPrice"`
	Quantity    int                  `bson:"quantity"`
	AssigneeIDs []string             `bson:"assigneeIds"`
}

type scannedItemDoc struct {
	Name     string               `bson:"name"`
	Price    primitive.Decimal128 `bson:"price"`
	Quantity int                  `bson:"quantity"`
}

type scannedReceiptDoc struct {
	Vendor string               `bson:"vendor,omitempty"`
	Total  primitive.Decimal128 `bson:"total"`
	Items  []scannedItemDoc     `bson:"items,omitempty"`
	Date   *time.Time           `bson:"date,omitempty"`
}

type receiptDoc struct {
	ImageURL    string             `bson:"imageUrl,omitempty"`
	ObjectKey   string             `bson:"objectKey,omitempty"`
	ContentType string             `bson:"contentType,omitempty"`
	UploadedAt  *time.Time         `bson:"uploadedAt,omitempty"`
	ScannedData *scannedReceiptDoc `bson:"scannedData,omitempty"`
}

type transactionDoc struct {
	ID           string               `bson:"_id"`
	Description  string               `bson:"description"`
	TotalAmount  primitive.Decimal128 `bson:"totalAmount"`
	Currency     string               `bson:"currency"`
	PayerID      string               `bson:"payerId"`
	GroupID      *string              `bson:"groupId"`
	Category     string               `bson:"category"`
	SplitMethod  string               `bson:"splitMethod"`
	Participants []participantDoc     `bson:"participants"`
	Items        []itemDoc            `bson:"items"`
	Status       string               `bson:"status"`
	Approvals    []types.Approval     `bson:"approvals"`
	Receipt      *receiptDoc          `bson:"receipt,omitempty"`
	Notes        string               `bson:"notes"`
	Tags         []string             `bson:"tags"`
	Location     *types.Location      `bson:"location,omitempty"`
	Recurring    *types.Recurring     `bson:"recurring,omitempty"`
	SettledAt    *time.Time           `bson:"settledAt,omitempty"`
	CreatedBy    string               `bson:"createdBy"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func newReceiptDoc(r *types.Receipt) *receiptDoc {
	if r == nil {
		return nil
	}
	doc := &receiptDoc{
		ImageURL:    r.ImageURL,
		ObjectKey:   r.ObjectKey,
		ContentType: r.ContentType,
		UploadedAt:  r.UploadedAt,
	}
	if s := r.ScannedData; s != nil {
		scanned := &scannedReceiptDoc{Vendor: s.Vendor, Total: toDecimal128(s.Total), Date: s.Date}
		for _, it := range s.Items {
			scanned.Items = append(scanned.Items, scannedItemDoc{
				Name:     it.Name,
				Price:    toDecimal128(it.Price),
				Quantity: it.Quantity,
			})
		}
		doc.ScannedData = scanned
	}
	return doc
}

func (d *receiptDoc) toReceipt() *types.Receipt {
	if d == nil {
		return nil
	}
	r := &types.Receipt{
		ImageURL:    d.ImageURL,
		ObjectKey:   d.ObjectKey,
		ContentType: d.ContentType,
		UploadedAt:  d.UploadedAt,
	}
	if s := d.ScannedData; s != nil {
		scanned := &types.ScannedReceipt{Vendor: s.Vendor, Total: fromDecimal128(s.Total), Date: s.Date}
		for _, it := range s.Items {
			scanned.Items = append(scanned.Items, types.ScannedItem{
				Name:     it.Name,
				Price:    fromDecimal128(it.Price),
				Quantity: it.Quantity,
			})
		}
		r.ScannedData = scanned
	}
	return r
}

func newTransactionDoc(t *types.Transaction) transactionDoc {
	participants := make([]participantDoc, 0, len(t.Participants))
	for _, p := range t.Participants {
		pd := participantDoc{
			UserID: p.UserID,
			Amount: toDecimal128(p.Amount),
			Paid:   p.Paid,
			PaidAt: p.PaidAt,
		}
		if p.Percentage != nil {
			pct := toDecimal128(*p.Percentage)
			pd.Percentage = &pct
		}
		participants = append(participants, pd)
	}

	items := make([]itemDoc, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, itemDoc{
			Name:        it.Name,
			UnitPrice:   toDecimal128(it.UnitPrice),
			Quantity:    it.Quantity,
			AssigneeIDs: it.AssigneeIDs,
		})
	}

	approvals := t.Approvals
	if approvals == nil {
		approvals = []types.Approval{}
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}

	return transactionDoc{
		ID:           t.ID,
		Description:  t.Description,
		TotalAmount:  toDecimal128(t.TotalAmount),
		Currency:     t.Currency,
		PayerID:      t.PayerID,
		GroupID:      t.GroupID,
		Category:     string(t.Category),
		SplitMethod:  string(t.SplitMethod),
		Participants: participants,
		Items:        items,
		Status:       string(t.Status),
		Approvals:    approvals,
		Receipt:      newReceiptDoc(t.Receipt),
		Notes:        t.Notes,
		Tags:         tags,
		Location:     t.Location,
		Recurring:    t.Recurring,
		SettledAt:    t.SettledAt,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (d transactionDoc) toTransaction() *types.Transaction {
	participants := make([]types.Participant, 0, len(d.Participants))
	for _, p := range d.Participants {
		tp := types.Participant{
			UserID: p.UserID,
			Amount: fromDecimal128(p.Amount),
			Paid:   p.Paid,
			PaidAt: p.PaidAt,
		}
		if p.Percentage != nil {
			pct := fromDecimal128(*p.Percentage)
			tp.Percentage = &pct
		}
		participants = append(participants, tp)
	}

	var items []types.Item
	for _, it := range d.Items {
		items = append(items, types.Item{
			Name:        it.Name,
			UnitPrice:   fromDecimal128(it.UnitPrice),
			Quantity:    it.Quantity,
			AssigneeIDs: it.AssigneeIDs,
		})
	}

	approvals := d.Approvals
	if approvals == nil {
		approvals = []types.Approval{}
	}

	return &types.Transaction{
		ID:           d.ID,
		Description:  d.Description,
		TotalAmount:  fromDecimal128(d.TotalAmount),
		Currency:     d.Currency,
		PayerID:      d.PayerID,
		GroupID:      d.GroupID,
		Category:     types.TransactionCategory(d.Category),
		SplitMethod:  types.SplitMethod(d.SplitMethod),
		Participants: participants,
		Items:        items,
		Status:       types.TransactionStatus(d.Status),
		Approvals:    approvals,
		Receipt:      d.Receipt.toReceipt(),
		Notes:        d.Notes,
		Tags:         d.Tags,
		Location:     d.Location,
		Recurring:    d.Recurring,
		SettledAt:    d.SettledAt,
		CreatedBy:    d.CreatedBy,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type friendRequestDoc struct {
	ID         string    `bson:"_id"`
	FromUserID string    `bson:"fromUserId"`
	ToUserID   string    `bson:"toUserId"`
	Message    string    `bson:"message"`
	Status     string    `bson:"status"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func (d friendRequestDoc) toFriendRequest() *types.FriendRequest {
	return &types.FriendRequest{
		ID:         d.ID,
		FromUserID: d.FromUserID,
		ToUserID:   d.ToUserID,
		Message:    d.Message,
		Status:     types.FriendRequestStatus(d.Status),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

type friendshipDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	FriendID  string    `bson:"friendId"`
	CreatedAt time.Time `bson:"createdAt"`
}

func friendshipID(userID, friendID string) string {
	return userID + ":" + friendID
}
