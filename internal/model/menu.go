package model

// Menu catalog types: products, categories, combos and ratings.  All
// prices are handled in cents internally; the DECIMAL(10,2) columns
// are converted at the repository boundary.

// Product is a single orderable menu item with stock.  Quantity acts
// as the per-item ceiling for cart additions: a guest can never stage
// more units of a product than are in stock.
//
// Fields:
//  ID                 – primary key identifier.
//  Name               – display name.
//  Description        – free text.
//  PriceCents         – list price in cents.
//  Quantity           – units in stock.
//  CategoryID         – owning category (nil when uncategorized).
//  OnPromotion        – whether the promotion discount applies.
//  DiscountPercentage – discount in percent, 0–100.
//  IsAvailable        – whether the product is shown on the menu.
//  AverageRating      – mean of customer ratings, 0 when unrated.
type Product struct {
	ID                 uint64  // products.id
	Name               string  // products.name
	Description        string  // products.description
	PriceCents         int64   // products.price (stored as DECIMAL)
	Quantity           uint32  // products.quantity
	CategoryID         *uint64 // products.category_id (nullable)
	OnPromotion        bool    // products.on_promotion
	DiscountPercentage uint8   // products.discount_percentage
	IsAvailable        bool    // products.is_available
	AverageRating      float64 // products.average_rating
}

// EffectivePriceCents is the unit price a cart line pays right now:
// the discounted price while the product is on promotion, the list
// price otherwise.  Subtotals are always recomputed from this value
// at save time; they are never frozen historical prices.
func (p Product) EffectivePriceCents() int64 {
	return discountedCents(p.PriceCents, p.OnPromotion, p.DiscountPercentage)
}

// Category groups products on the menu.
type Category struct {
	ID          uint64 // categories.id
	Name        string // categories.name
	Description string // categories.description
	IsActive    bool   // categories.is_active
}

// Combo bundles several products into a single orderable unit with
// its own price and promotion.  Combo discounts are capped at 80%.
//
// Fields mirror Product, minus stock: combos are not stock-tracked,
// so cart additions are capped at MaxComboQuantity instead.
type Combo struct {
	ID                 uint64  // combos.id
	Name               string  // combos.name
	Description        string  // combos.description
	PriceCents         int64   // combos.price (stored as DECIMAL)
	OnPromotion        bool    // combos.on_promotion
	DiscountPercentage uint8   // combos.discount_percentage
	IsActive           bool    // combos.is_active
	AverageRating      float64 // combos.average_rating
}

// MaxComboDiscount bounds combo discount percentages.
const MaxComboDiscount = 80

// EffectivePriceCents is the unit price of the combo right now, with
// the promotion discount applied while active.
func (co Combo) EffectivePriceCents() int64 {
	return discountedCents(co.PriceCents, co.OnPromotion, co.DiscountPercentage)
}

// discountedCents applies pct percent off when promoted, rounding the
// discount down to whole cents.
func discountedCents(price int64, promoted bool, pct uint8) int64 {
	if !promoted || pct == 0 {
		return price
	}
	return price - price*int64(pct)/100
}

// Rating is a customer review of a product, 1 to 5 stars.
//
// Fields:
//  ID        – primary key identifier.
//  Title     – short headline.
//  Text      – review body.
//  Rating    – 1..5.
//  ProductID – reviewed product.
//  UserID    – reviewing user.
type Rating struct {
	ID        uint64 // ratings.id
	Title     string // ratings.title
	Text      string // ratings.text
	Rating    uint8  // ratings.rating
	ProductID uint64 // ratings.product_id
	UserID    uint64 // ratings.user_id
}

// ValidateRating returns field-level messages for a rating submission;
// an empty map means the submission is acceptable.
func ValidateRating(title, text string, rating int) map[string]string {
	errs := map[string]string{}
	if title == "" {
		errs["title"] = "title is required"
	}
	if text == "" {
		errs["text"] = "text is required"
	}
	if rating < 1 || rating > 5 {
		errs["rating"] = "rating must be between 1 and 5"
	}
	return errs
}
