package partner

import (
	"github.com/shopledger/backend/internal/domain/shared"
)

// Supplier represents a vendor the shop buys stock from
type Supplier struct {
	shared.BaseAggregateRoot
	shared.Lifecycle
	Name          string
	ContactPerson string
	// Phone is stored as exactly 10 digits, or empty
	Phone   string
	Email   string
	Address string
}

// SupplierDetails carries the editable fields of a supplier
type SupplierDetails struct {
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
}

// NewSupplier creates an active supplier
func NewSupplier(details SupplierDetails) (*Supplier, error) {
	s := &Supplier{Lifecycle: shared.Lifecycle{Status: shared.StatusActive}}
	if err := s.Apply(details); err != nil {
		return nil, err
	}
	return s, nil
}

// Details returns the editable fields
func (s *Supplier) Details() SupplierDetails {
	return SupplierDetails{
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
	}
}

// Apply validates and normalizes details, then replaces the editable fields
func (s *Supplier) Apply(details SupplierDetails) error {
	name := shared.SanitizeText(details.Name)
	if err := validateSupplierName(name); err != nil {
		return err
	}

	phone, err := shared.NormalizePhone(details.Phone)
	if err != nil {
		return err
	}

	email := shared.SanitizeText(details.Email)
	if err := shared.ValidateEmail(email); err != nil {
		return err
	}

	s.Name = name
	s.ContactPerson = shared.SanitizeText(details.ContactPerson)
	s.Phone = phone
	s.Email = email
	s.Address = shared.SanitizeText(details.Address)
	return nil
}

func validateSupplierName(name string) error {
	if err := shared.RequireText("name", name); err != nil {
		return err
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Supplier name cannot exceed 200 characters")
	}
	return nil
}
