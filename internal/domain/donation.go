package domain

import (
	"net/mail"
	"strings"
	"time"
)

// Category enumerates the causes a donation can be made to.
type Category string

const (
	CategoryEducation   Category = "education"
	CategoryHealthcare  Category = "healthcare"
	CategoryEnvironment Category = "environment"
	CategoryEmergency   Category = "emergency"
)

// DefaultFavoriteCause is reported when an owner has no donations yet.
const DefaultFavoriteCause = CategoryEducation

// Categories lists every supported category in declaration order.
var Categories = []Category{
	CategoryEducation,
	CategoryHealthcare,
	CategoryEnvironment,
	CategoryEmergency,
}

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryEducation, CategoryHealthcare, CategoryEnvironment, CategoryEmergency:
		return true
	}
	return false
}

// ParseCategory normalizes raw input into a Category.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if c == "" {
		return "", &ValidationError{Field: "category", Message: "category is required"}
	}
	if !c.Valid() {
		return "", &ValidationError{Field: "category", Message: "category must be one of education, healthcare, environment, emergency"}
	}
	return c, nil
}

// Status tracks the settlement state of a donation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

const (
	DefaultPaymentMethod = "online"
	DefaultCurrency      = "INR"
	MinDonationAmount    = 1
)

// Owner is the public projection of the user who made a donation.
type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Donation is an immutable record of a single contribution.
type Donation struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"-"`
	Owner         *Owner    `json:"user,omitempty"`
	Amount        int64     `json:"amount"`
	Category      Category  `json:"category"`
	DonorName     string    `json:"donorName"`
	DonorEmail    string    `json:"email"`
	Message       string    `json:"message,omitempty"`
	Status        Status    `json:"status"`
	TransactionID string    `json:"transactionId"`
	PaymentMethod string    `json:"paymentMethod"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewDonation holds the caller-supplied fields for a donation about to be stored.
type NewDonation struct {
	OwnerID    string
	Amount     int64
	Category   Category
	DonorName  string
	DonorEmail string
	Message    string
	// TransactionID is generated by the store when empty.
	TransactionID string
}

// Normalize trims free text and canonicalizes the donor email.
func (n *NewDonation) Normalize() {
	n.OwnerID = strings.TrimSpace(n.OwnerID)
	n.Category = Category(strings.ToLower(strings.TrimSpace(string(n.Category))))
	n.DonorName = strings.TrimSpace(n.DonorName)
	n.DonorEmail = NormalizeEmail(n.DonorEmail)
	n.Message = strings.TrimSpace(n.Message)
	n.TransactionID = strings.TrimSpace(n.TransactionID)
}

// Validate checks the invariants every persisted donation must satisfy.
func (n NewDonation) Validate() error {
	switch {
	case n.OwnerID == "":
		return &ValidationError{Field: "user", Message: "owner is required"}
	case n.DonorName == "":
		return &ValidationError{Field: "name", Message: "donor name is required"}
	case n.DonorEmail == "":
		return &ValidationError{Field: "email", Message: "donor email is required"}
	case n.Amount < MinDonationAmount:
		return &ValidationError{Field: "amount", Message: "Donation amount must be at least ₹1"}
	}
	if _, err := ParseCategory(string(n.Category)); err != nil {
		return err
	}
	if !ValidEmail(n.DonorEmail) {
		return &ValidationError{Field: "email", Message: "donor email is not a valid address"}
	}
	return nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email is a bare address such as a@b.c.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}
