package midtrans

import (
	"strings"

	mt "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// SnapItem is one provider-facing line item. Prices are whole rupiah.
type SnapItem struct {
	ID    string
	Name  string
	Price int64
	Qty   int32
}

// SnapCreateParams contains the fields required to open a Snap payment page.
type SnapCreateParams struct {
	OrderID       string
	GrossAmount   int64
	Items         []SnapItem
	CustomerName  string
	CustomerEmail string
}

func (p SnapCreateParams) toSnapRequest() *snap.Request {
	req := &snap.Request{
		TransactionDetails: mt.TransactionDetails{
			OrderID:  p.OrderID,
			GrossAmt: p.GrossAmount,
		},
	}

	if len(p.Items) > 0 {
		items := make([]mt.ItemDetails, 0, len(p.Items))
		for _, item := range p.Items {
			items = append(items, mt.ItemDetails{
				ID:    item.ID,
				Name:  truncateItemName(item.Name),
				Price: item.Price,
				Qty:   item.Qty,
			})
		}
		req.Items = &items
	}

	name := strings.TrimSpace(p.CustomerName)
	email := strings.TrimSpace(p.CustomerEmail)
	if name != "" || email != "" {
		req.CustomerDetail = &mt.CustomerDetails{
			FName: name,
			Email: email,
		}
	}

	return req
}

// Midtrans rejects item names over 50 characters.
func truncateItemName(name string) string {
	const maxLen = 50
	if len(name) <= maxLen {
		return name
	}
	return name[:maxLen]
}

// SnapTransaction is the provider handle returned for a hosted payment page.
type SnapTransaction struct {
	Token       string
	RedirectURL string
}
