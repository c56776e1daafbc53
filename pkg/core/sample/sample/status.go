package sample

import (
	"context"
	"errors"

	"github.com/scienceol/sampletrack/pkg/common/code"
	core "github.com/scienceol/sampletrack/pkg/core/sample"
	"github.com/scienceol/sampletrack/pkg/repo/model"
)

func (s *sampleImpl) SampleStatus(ctx context.Context, req *core.SampleStatusReq) (*core.SampleStatusResp, error) {
	if req == nil || req.SampleUUID.IsNil() {
		return nil, code.ParamErr.WithMsg("sample_uuid_to_get_tat_for is required")
	}

	smp, err := s.trackStore.GetSampleByUUID(ctx, req.SampleUUID)
	if errors.Is(err, code.RecordNotFound) {
		return nil, code.SampleNotFoundErr.WithMsgf("sample with uuid %s not found", req.SampleUUID)
	}
	if err != nil {
		return nil, err
	}

	resp := &core.SampleStatusResp{
		SampleUUID:  smp.UUID,
		OrderPlaced: smp.CreatedAt,
	}
	if smp.Status == model.SampleShipped {
		shipped := smp.UpdatedAt
		resp.SampleShipped = &shipped
	}
	return resp, nil
}
