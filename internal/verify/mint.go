package verify

import (
	"time"

	"github.com/dajiagoods/storefront/internal/ident"
)

// Mint creates count active codes for one product, ordinals 1..count. The
// order number is empty for standalone admin batches.
func Mint(productID, productName, orderNumber string, count int) []Code {
	now := time.Now().UTC()
	codes := make([]Code, 0, count)
	for i := 0; i < count; i++ {
		codes = append(codes, Code{
			Code:        ident.VerificationCode(i + 1),
			ProductID:   productID,
			ProductName: productName,
			OrderNumber: orderNumber,
			Status:      StatusActive,
			CreatedAt:   now,
		})
	}
	return codes
}
