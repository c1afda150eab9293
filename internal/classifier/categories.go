package classifier

// Categories lists the labels in the order of the model's output vector.
// Index i of a probability vector is Categories[i]. The order and spelling
// ("Healty" included) are fixed by the exported model and must only change
// together with it.
var Categories = [...]string{
	"Healty",
	"Yellow Mosaic",
	"Sudden Death Syndrome",
	"Bacterial Pustule",
	"Rust",
	"Frogeye Leaf Spot",
	"Target Leaf Spot",
}

// NumCategories is the expected width of the model output.
const NumCategories = len(Categories)

// IsCategory reports whether s is one of Categories.
func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}
