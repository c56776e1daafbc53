package sample

import (
	"github.com/gin-gonic/gin"
	"github.com/scienceol/sampletrack/pkg/common"
	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/core/sample"
	impl "github.com/scienceol/sampletrack/pkg/core/sample/sample"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
)

type Handle struct {
	sService sample.Service
}

func NewSampleHandle() *Handle {
	return NewSampleHandleWith(impl.New())
}

func NewSampleHandleWith(sService sample.Service) *Handle {
	return &Handle{sService: sService}
}

// SamplesToMake godoc
// @Summary  Next batch of samples to manufacture
// @Tags     samples
// @Produce  json
// @Success  200  {object}  common.Resp{data=sample.SamplesToMakeResp}
// @Router   /v1/samples/to-process [get]
func (h *Handle) SamplesToMake(ctx *gin.Context) {
	resp, err := h.sService.SamplesToMake(ctx)
	common.Reply(ctx, err, resp)
}

// ClaimSamples godoc
// @Summary  Claim ordered samples for processing
// @Tags     samples
// @Accept   json
// @Produce  json
// @Param    body  body      sample.ClaimSamplesReq  true  "samples to claim"
// @Success  200   {object}  common.Resp{data=sample.ClaimSamplesResp}
// @Failure  409   {object}  common.Resp{error=common.Error{info=sample.StatusDetail}}
// @Router   /v1/samples/claim [post]
func (h *Handle) ClaimSamples(ctx *gin.Context) {
	req := &sample.ClaimSamplesReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse ClaimSamples param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.sService.ClaimSamples(ctx, req)
	common.Reply(ctx, err, resp)
}

// LogQCResults godoc
// @Summary  Record qc measurements for manufactured samples
// @Tags     samples
// @Accept   json
// @Produce  json
// @Param    body  body      sample.QCResultsReq  true  "qc results"
// @Success  200   {object}  common.Resp{data=sample.MessageResp}
// @Failure  400   {object}  common.Resp{error=common.Error{info=sample.SamplesDetail}}
// @Failure  409   {object}  common.Resp{error=common.Error{info=sample.SampleDetail}}
// @Router   /v1/samples/qc-results [post]
func (h *Handle) LogQCResults(ctx *gin.Context) {
	req := &sample.QCResultsReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse LogQCResults param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.sService.LogQCResults(ctx, req)
	common.Reply(ctx, err, resp)
}

// SamplesToShip godoc
// @Summary  Samples that passed qc and wait for shipping
// @Tags     samples
// @Produce  json
// @Success  200  {object}  common.Resp{data=sample.SamplesToShipResp}
// @Router   /v1/samples/to-ship [get]
func (h *Handle) SamplesToShip(ctx *gin.Context) {
	resp, err := h.sService.SamplesToShip(ctx)
	common.Reply(ctx, err, resp)
}

// RecordShipped godoc
// @Summary  Mark samples as shipped
// @Tags     samples
// @Accept   json
// @Produce  json
// @Param    body  body      sample.SamplesShippedReq  true  "shipped samples"
// @Success  200   {object}  common.Resp{data=sample.SamplesShippedResp}
// @Failure  409   {object}  common.Resp{error=common.Error{info=sample.StatusDetail}}
// @Router   /v1/samples/shipped [post]
func (h *Handle) RecordShipped(ctx *gin.Context) {
	req := &sample.SamplesShippedReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse RecordShipped param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.sService.RecordShipped(ctx, req)
	common.Reply(ctx, err, resp)
}

// SampleStatus godoc
// @Summary  Turnaround timestamps of one sample
// @Tags     samples
// @Accept   json
// @Produce  json
// @Param    body  body      sample.SampleStatusReq  true  "sample to inspect"
// @Success  200   {object}  common.Resp{data=sample.SampleStatusResp}
// @Failure  404   {object}  common.Resp
// @Router   /v1/sample/status [post]
func (h *Handle) SampleStatus(ctx *gin.Context) {
	req := &sample.SampleStatusReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse SampleStatus param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.sService.SampleStatus(ctx, req)
	common.Reply(ctx, err, resp)
}
