// Package orders turns a cart snapshot into an immutable order record and
// mints the per-unit verification codes that ship with it.
package orders

import (
	"time"

	"github.com/dajiagoods/storefront/internal/cart"
)

// ShippingFee is the flat fee added to every order, NT$.
const ShippingFee = 100

// FormData is the buyer block captured at checkout. Name, phone, email and
// address are required; the rest is optional.
type FormData struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	City          string `json:"city,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	Notes         string `json:"notes,omitempty"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
}

// Order is immutable once placed, except for Status which only the admin
// surface may advance.
type Order struct {
	OrderNumber string      `json:"order_number"`
	Items       []cart.Item `json:"items"`
	Total       int         `json:"total"`
	Shipping    int         `json:"shipping"`
	FormData    FormData    `json:"form_data"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Units is the number of purchased units, which is also the number of
// verification codes minted for the order.
func (o Order) Units() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// ValidateForm returns field → message for the required buyer fields.
func ValidateForm(f FormData) map[string]string {
	errs := map[string]string{}
	if f.Name == "" {
		errs["name"] = "請輸入姓名"
	}
	if f.Phone == "" {
		errs["phone"] = "請輸入電話"
	}
	if f.Email == "" {
		errs["email"] = "請輸入電子郵件"
	}
	if f.Address == "" {
		errs["address"] = "請輸入地址"
	}
	return errs
}
