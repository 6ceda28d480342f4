package objectdetection

import "github.com/samber/lo"

// Postprocessor defines a function that filters/modifies on an incoming array of Detections.
type Postprocessor func([]Detection) []Detection

// NewAreaFilter returns a function that filters out detections whose box covers less than area
// pixels of a w x h frame.
func NewAreaFilter(area, w, h int) Postprocessor {
	return func(in []Detection) []Detection {
		return lo.Filter(in, func(d Detection, _ int) bool {
			r := d.Box.Clamp().Rect(w, h)
			return r.Dx()*r.Dy() >= area
		})
	}
}

// NewScoreFilter returns a function that filters out detections whose best class probability is
// below conf.
func NewScoreFilter(conf float64) Postprocessor {
	return func(in []Detection) []Detection {
		return lo.Filter(in, func(d Detection, _ int) bool {
			return d.Score() >= conf
		})
	}
}

// Score returns the highest class probability of the detection.
func (d Detection) Score() float64 {
	return lo.Max(append([]float64{0}, d.Prob...))
}
