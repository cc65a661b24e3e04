package state

// Category is a closed-set label identifying the topical domain of a question.
// The router and the UI-facing category selector must agree on this set.
type Category string

const (
	CategoryPolicy      Category = "운영 문의"
	CategorySubject     Category = "과목 선택"
	CategoryAdmission   Category = "입시 연계"
	CategoryBook        Category = "도서 추천"
	CategoryService     Category = "고객 문의"
	CategoryUnspecified Category = "미지정"
)

// Categories lists the selectable categories in UI order.
// CategoryUnspecified is the rejection default, not a selectable value.
func Categories() []Category {
	return []Category{
		CategoryPolicy,
		CategorySubject,
		CategoryAdmission,
		CategoryBook,
		CategoryService,
	}
}

// ParseCategory maps raw caller input onto the closed enumeration.
// Anything outside the enumeration resolves to CategoryUnspecified rather
// than silently misrouting.
func ParseCategory(raw string) Category {
	switch Category(raw) {
	case CategoryPolicy, CategorySubject, CategoryAdmission, CategoryBook, CategoryService:
		return Category(raw)
	default:
		return CategoryUnspecified
	}
}

// Document is the unit of retrieval output: a text passage plus provenance
// metadata. Immutable once produced by a retriever; it belongs to the request
// it was retrieved for and is never shared across requests.
type Document struct {
	Content  string
	Metadata map[string]string
}

// RequestState is the unit of data flowing through the pipeline for one user
// turn. All fields are optional at construction; each node reads a subset and
// writes a subset.
type RequestState struct {
	Question   string
	Documents  []Document
	Generation string
	Category   Category
	UserID     string

	// Blocked is set by the safety gate. A blocked request terminates with
	// the fixed denial message and no downstream side effects.
	Blocked bool

	// NextNode carries the router's branch decision to the graph executor.
	NextNode string
}
