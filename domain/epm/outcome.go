package epm

import "math"

// SubjectResponses computes the per-animal directional summary for one
// paired sample. Meant for primary parameters, where individual response
// profiles matter as much as the group test.
//
// epsilon is an absolute tolerance on the delta. The default of 0 means any
// nonzero change is labeled directional; reported response proportions shift
// with this choice, so it is surfaced in configuration rather than buried.
func SubjectResponses(sample PairedSample, epsilon float64) []SubjectResponse {
	responses := make([]SubjectResponse, 0, sample.N())

	for i := range sample.Diff {
		delta := sample.Diff[i]
		pct := math.NaN()
		if sample.Off[i] != 0 {
			pct = delta / sample.Off[i] * 100
		}
		responses = append(responses, SubjectResponse{
			Parameter:     sample.Parameter,
			Subject:       sample.Subjects[i],
			Off:           sample.Off[i],
			On:            sample.On[i],
			Delta:         delta,
			PercentChange: pct,
			Direction:     ClassifyResponse(delta, epsilon),
		})
	}
	return responses
}
