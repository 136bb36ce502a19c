package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Condition describes the physical state of a listed textbook.
type Condition string

const (
	ConditionNew      Condition = "new"
	ConditionLikeNew  Condition = "like new"
	ConditionUsed     Condition = "used"
	ConditionVeryUsed Condition = "very used"
)

// ValidCondition reports whether c is one of the accepted values.
func ValidCondition(c Condition) bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionUsed, ConditionVeryUsed:
		return true
	}
	return false
}

// Categories accepted for a listing. Anything else is rejected at the
// boundary; an empty category defaults to "Uncategorized".
var Categories = []string{
	"Math",
	"Science",
	"Computer Science",
	"Engineering",
	"Business",
	"Literature",
	"Language",
	"Uncategorized",
}

// ValidCategory reports whether cat is one of the accepted values.
func ValidCategory(cat string) bool {
	for _, c := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// Textbook represents a listing offered for sale by a seller.
// A non-nil BuyerID marks the listing as sold; sold listings are
// excluded from active views and are immutable.
type Textbook struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Title       string          `json:"title" gorm:"size:255;not null;index"`
	Author      string          `json:"author,omitempty" gorm:"size:255"`
	ISBN        string          `json:"isbn,omitempty" gorm:"size:17"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null"`
	Condition   Condition       `json:"condition" gorm:"type:varchar(20);not null;default:'used'"`
	Category    string          `json:"category" gorm:"size:64;not null;default:'Uncategorized';index"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	Images      []string        `json:"images,omitempty" gorm:"serializer:json"`
	SellerID    uuid.UUID       `json:"seller_id" gorm:"type:char(36);not null;index"`
	BuyerID     *uuid.UUID      `json:"buyer_id,omitempty" gorm:"type:char(36);index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relations
	Seller User  `json:"-" gorm:"foreignKey:SellerID"`
	Buyer  *User `json:"-" gorm:"foreignKey:BuyerID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Textbook) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Sold reports whether the listing has been purchased.
func (t *Textbook) Sold() bool {
	return t.BuyerID != nil
}

// ListingView is a textbook joined with its seller's public identity,
// the shape returned by browse and search endpoints.
type ListingView struct {
	Textbook
	SellerInfo PublicUser `json:"seller"`
}
