package model

type SampleStatus string

const (
	SampleOrdered    SampleStatus = "ORDERED"
	SampleProcessing SampleStatus = "PROCESSING"
	SampleFailed     SampleStatus = "FAILED"
	SamplePassedQC   SampleStatus = "PASSED_QC"
	SampleShipped    SampleStatus = "SHIPPED"
)

// sampleTransitions is the only place allowed status moves are defined.
// Status never moves backwards.
var sampleTransitions = map[SampleStatus][]SampleStatus{
	SampleOrdered:    {SampleProcessing, SamplePassedQC, SampleFailed},
	SampleProcessing: {SamplePassedQC, SampleFailed},
	SamplePassedQC:   {SampleShipped},
	SampleFailed:     {},
	SampleShipped:    {},
}

func (s SampleStatus) Valid() bool {
	_, ok := sampleTransitions[s]
	return ok
}

func (s SampleStatus) CanTransitionTo(next SampleStatus) bool {
	for _, allowed := range sampleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s SampleStatus) Terminal() bool {
	return s.Valid() && len(sampleTransitions[s]) == 0
}

func (s SampleStatus) String() string {
	return string(s)
}
