// Package catalog holds the product line. Products are read-only to the
// rest of the system: the cart snapshots them and checkout deep-copies the
// snapshots into the order record.
package catalog

type Category string

const (
	CategoryCarry  Category = "carry"
	CategoryGift   Category = "gift"
	CategoryHome   Category = "home"
	CategoryOffice Category = "office"
)

type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	Category Category `json:"category"`
	Price    int      `json:"price"` // NT$, whole dollars
	Stock    int      `json:"stock"`
	InStock  bool     `json:"inStock"`
	Image    string   `json:"image,omitempty"`
}

// Purchasable reports whether a unit can be added to a cart at all. The
// InStock flag can be false independently of Stock.
func (p Product) Purchasable() bool { return p.InStock && p.Stock > 0 }

// Products is the seeded product line, in display order.
var Products = []Product{
	{ID: "1", Name: "媽祖金箔護身符", Slug: "mazu-gold-amulet", Category: CategoryCarry, Price: 1880, Stock: 50, InStock: true},
	{ID: "2", Name: "順風耳鑰匙圈", Slug: "shunfenger-keychain", Category: CategoryCarry, Price: 680, Stock: 120, InStock: true},
	{ID: "3", Name: "千里眼鑰匙圈", Slug: "qianliyan-keychain", Category: CategoryCarry, Price: 680, Stock: 120, InStock: true},
	{ID: "4", Name: "財庫開運金鏟", Slug: "fortune-golden-shovel", Category: CategoryHome, Price: 1280, Stock: 80, InStock: true},
	{ID: "5", Name: "平安香火袋", Slug: "peace-incense-bag", Category: CategoryCarry, Price: 580, Stock: 200, InStock: true},
	{ID: "6", Name: "媽祖賜福車掛", Slug: "mazu-car-pendant", Category: CategoryCarry, Price: 980, Stock: 90, InStock: true},
	{ID: "7", Name: "開運紅包袋組", Slug: "fortune-red-envelope", Category: CategoryGift, Price: 380, Stock: 300, InStock: true},
	{ID: "8", Name: "祈福筆記本", Slug: "blessing-notebook", Category: CategoryOffice, Price: 680, Stock: 150, InStock: true},
	{ID: "9", Name: "香火蠟燭禮盒", Slug: "incense-candle-set", Category: CategoryGift, Price: 1580, Stock: 60, InStock: true},
	{ID: "10", Name: "遶境紀念徽章", Slug: "pilgrimage-badge", Category: CategoryCarry, Price: 480, Stock: 180, InStock: true},
	{ID: "11", Name: "福祿壽擺飾組", Slug: "fu-lu-shou-ornament", Category: CategoryHome, Price: 2880, Stock: 40, InStock: true},
	{ID: "12", Name: "開運手機支架", Slug: "fortune-phone-stand", Category: CategoryOffice, Price: 880, Stock: 100, InStock: true},
}

func ByID(id string) (Product, bool) {
	for _, p := range Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func BySlug(slug string) (Product, bool) {
	for _, p := range Products {
		if p.Slug == slug {
			return p, true
		}
	}
	return Product{}, false
}
