package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/partner"
)

// CreateSupplierRequest represents a request to create a new supplier
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Phone         string `json:"phone" binding:"max=20"`
	Email         string `json:"email" binding:"omitempty,email,max=200"`
	Address       string `json:"address" binding:"max=500"`
}

// UpdateSupplierRequest represents a partial update. Nil fields keep their value.
type UpdateSupplierRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=200"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=100"`
	Phone         *string `json:"phone" binding:"omitempty,max=20"`
	Email         *string `json:"email" binding:"omitempty,max=200"`
	Address       *string `json:"address" binding:"omitempty,max=500"`
}

// SupplierListFilter represents filter options for the supplier list
type SupplierListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int       `json:"version"`
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		Status:        string(s.Status),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		Version:       s.Version,
	}
}

// ToSupplierResponses converts a slice of suppliers
func ToSupplierResponses(suppliers []*partner.Supplier) []SupplierResponse {
	responses := make([]SupplierResponse, len(suppliers))
	for i, s := range suppliers {
		responses[i] = ToSupplierResponse(s)
	}
	return responses
}

func (r CreateSupplierRequest) details() partner.SupplierDetails {
	return partner.SupplierDetails{
		Name:          r.Name,
		ContactPerson: r.ContactPerson,
		Phone:         r.Phone,
		Email:         r.Email,
		Address:       r.Address,
	}
}

func (r UpdateSupplierRequest) merge(d partner.SupplierDetails) partner.SupplierDetails {
	if r.Name != nil {
		d.Name = *r.Name
	}
	if r.ContactPerson != nil {
		d.ContactPerson = *r.ContactPerson
	}
	if r.Phone != nil {
		d.Phone = *r.Phone
	}
	if r.Email != nil {
		d.Email = *r.Email
	}
	if r.Address != nil {
		d.Address = *r.Address
	}
	return d
}
