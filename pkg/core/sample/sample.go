package sample

import "context"

type Service interface {
	// SamplesToMake lists the next batch of ordered samples awaiting
	// manufacture, oldest first.
	SamplesToMake(ctx context.Context) (*SamplesToMakeResp, error)
	// ClaimSamples moves ordered samples into PROCESSING, all or none.
	ClaimSamples(ctx context.Context, req *ClaimSamplesReq) (*ClaimSamplesResp, error)
	LogQCResults(ctx context.Context, req *QCResultsReq) (*MessageResp, error)
	SamplesToShip(ctx context.Context) (*SamplesToShipResp, error)
	RecordShipped(ctx context.Context, req *SamplesShippedReq) (*SamplesShippedResp, error)
	SampleStatus(ctx context.Context, req *SampleStatusReq) (*SampleStatusResp, error)
}
