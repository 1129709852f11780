package vision

import (
	"math"
	"math/rand"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/warebotics/warebot/core/model"
)

// DefaultClasses are the item categories the classifier distinguishes.
var DefaultClasses = []string{"box", "pallet", "container", "tool", "part"}

// Classification is an item detection annotated with a predicted class.
type Classification struct {
	Detection     model.ItemDetection `json:"detection"`
	Predicted     string              `json:"predicted_class"`
	Confidence    float64             `json:"confidence"`
	Probabilities map[string]float64  `json:"class_probabilities"`
}

// Classifier assigns classes to item detections through a simulated confusion
// matrix: row i holds the prediction probabilities given true class i.
type Classifier struct {
	classes   []string
	confusion *mat.Dense
	rng       *rand.Rand
}

// NewClassifier builds a classifier with the given base accuracy on the
// diagonal and the residual probability spread evenly off-diagonal. A nil
// class list selects DefaultClasses.
func NewClassifier(classes []string, accuracy float64, rng *rand.Rand) *Classifier {
	if classes == nil {
		classes = DefaultClasses
	}
	n := len(classes)
	m := mat.NewDense(n, n, nil)
	offDiag := (1 - accuracy) / float64(n-1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				m.Set(i, j, accuracy)
			} else {
				m.Set(i, j, offDiag)
			}
		}
	}
	return &Classifier{classes: classes, confusion: m, rng: rng}
}

// Classes returns the class names in matrix order.
func (c *Classifier) Classes() []string { return c.classes }

// Classify annotates each detection with a predicted class. The true class row
// of the confusion matrix is perturbed with Gaussian noise, renormalized, and
// the argmax becomes the prediction. The final confidence is scaled by the
// detection confidence.
func (c *Classifier) Classify(detections []model.ItemDetection) []Classification {
	out := make([]Classification, 0, len(detections))
	for _, det := range detections {
		row := mat.Row(nil, c.classIndex(det.Item.Type), c.confusion)

		total := 0.0
		for i := range row {
			row[i] += c.rng.NormFloat64() * 0.05
			row[i] = math.Min(1, math.Max(0, row[i]))
			total += row[i]
		}
		best := 0
		probs := make(map[string]float64, len(row))
		for i := range row {
			if total > 0 {
				row[i] /= total
			}
			probs[c.classes[i]] = row[i]
			if row[i] > row[best] {
				best = i
			}
		}

		out = append(out, Classification{
			Detection:     det,
			Predicted:     c.classes[best],
			Confidence:    row[best] * det.Confidence,
			Probabilities: probs,
		})
	}
	return out
}

// Reinforce nudges the confusion matrix toward the observed outcome and
// renormalizes the row, mimicking online feedback.
func (c *Classifier) Reinforce(trueClass, predicted string) {
	ti := c.nameIndex(trueClass)
	pi := c.nameIndex(predicted)
	if ti < 0 || pi < 0 {
		return
	}
	const step = 0.01
	c.confusion.Set(ti, pi, c.confusion.At(ti, pi)+step)
	row := mat.Row(nil, ti, c.confusion)
	total := mat.Sum(mat.NewVecDense(len(row), row))
	for j := range row {
		c.confusion.Set(ti, j, row[j]/total)
	}
}

// classIndex maps an item type to a matrix row. Generated types of the form
// "type_N" wrap around the class list; unknown names draw a random row.
func (c *Classifier) classIndex(itemType string) int {
	if rest, ok := strings.CutPrefix(itemType, "type_"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n > 0 {
			return (n - 1) % len(c.classes)
		}
	}
	if i := c.nameIndex(itemType); i >= 0 {
		return i
	}
	return c.rng.Intn(len(c.classes))
}

func (c *Classifier) nameIndex(name string) int {
	for i, cl := range c.classes {
		if cl == name {
			return i
		}
	}
	return -1
}
