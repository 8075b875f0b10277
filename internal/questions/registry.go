package questions

// Question is one canonical buyer question a product's content should answer.
type Question struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// canonical is the fixed set of buyer questions in display order.
var canonical = []Question{
	{ID: "what_is_it", Label: "What is it?"},
	{ID: "who_is_it_for", Label: "Who is it for?"},
	{ID: "why_choose_this", Label: "Why choose this?"},
	{ID: "how_to_use", Label: "How do I use it?"},
	{ID: "key_features", Label: "What are the key features?"},
	{ID: "comparisons", Label: "How does it compare?"},
	{ID: "pricing_value", Label: "Is it worth the price?"},
	{ID: "shipping_returns", Label: "What about shipping and returns?"},
	{ID: "warranty_support", Label: "What warranty and support is included?"},
	{ID: "reviews_social", Label: "What do other buyers say?"},
}

var labels = func() map[string]string {
	m := make(map[string]string, len(canonical))
	for _, q := range canonical {
		m[q.ID] = q.Label
	}
	return m
}()

// List returns the canonical questions in display order. The returned slice is
// a copy and safe for callers to mutate.
func List() []Question {
	out := make([]Question, len(canonical))
	copy(out, canonical)
	return out
}

// LabelFor returns the display label for a question ID. Unknown IDs are
// returned verbatim so callers never need to handle a miss.
func LabelFor(id string) string {
	if label, ok := labels[id]; ok {
		return label
	}
	return id
}

// IsCanonical reports whether the ID belongs to the canonical set.
func IsCanonical(id string) bool {
	_, ok := labels[id]
	return ok
}
