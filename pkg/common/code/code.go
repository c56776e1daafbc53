package code

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

type ErrCode int

const Success ErrCode = 0

const (
	UnDefineErr ErrCode = 10000 + iota
	ParamErr
	RPCHttpErr
	RPCHttpCodeErr
	NotifySendMsgErr
	NotifyActionAlreadyRegistryErr
	UnmarshalWSDataErr
)

// store errors
const (
	RecordNotFound ErrCode = 20000 + iota
	QueryRecordErr
	CreateDataErr
	UpdateDataErr
	DuplicateKeyErr
)

// order / sample lifecycle errors
const (
	DuplicateInInputErr ErrCode = 30000 + iota
	SampleAlreadyExistErr
	OrderNotFoundErr
	SampleNotFoundErr
	SamplesNotFoundErr
	QCAlreadyLoggedErr
	InvalidStateTransitionErr
	SampleStatusConflictErr
	OrderCreateErr
	QCLogErr
	ShipmentCreateErr
)

var errCodeMsg = map[ErrCode]string{
	Success:                        "success",
	UnDefineErr:                    "undefined error",
	ParamErr:                       "parameter error",
	RPCHttpErr:                     "rpc http request error",
	RPCHttpCodeErr:                 "rpc http response code error",
	NotifySendMsgErr:               "send notify message error",
	NotifyActionAlreadyRegistryErr: "notify action already registered",
	UnmarshalWSDataErr:             "unmarshal websocket data error",

	RecordNotFound:  "record not found",
	QueryRecordErr:  "query record error",
	CreateDataErr:   "create data error",
	UpdateDataErr:   "update data error",
	DuplicateKeyErr: "duplicate key",

	DuplicateInInputErr:       "duplicate sample uuids in input",
	SampleAlreadyExistErr:     "sample uuids already exist",
	OrderNotFoundErr:          "order not found",
	SampleNotFoundErr:         "sample not found",
	SamplesNotFoundErr:        "samples not found",
	QCAlreadyLoggedErr:        "qc results already exist for sample",
	InvalidStateTransitionErr: "sample is not in a valid state for this operation",
	SampleStatusConflictErr:   "sample status changed concurrently",
	OrderCreateErr:            "create order error",
	QCLogErr:                  "log qc results error",
	ShipmentCreateErr:         "record shipment error",
}

var errCodeHTTP = map[ErrCode]int{
	Success:               http.StatusOK,
	ParamErr:              http.StatusBadRequest,
	UnmarshalWSDataErr:    http.StatusBadRequest,
	RecordNotFound:        http.StatusNotFound,
	DuplicateKeyErr:       http.StatusConflict,
	DuplicateInInputErr:   http.StatusBadRequest,
	SampleAlreadyExistErr: http.StatusConflict,
	OrderNotFoundErr:      http.StatusNotFound,
	SampleNotFoundErr:     http.StatusNotFound,
	// unknown uuids inside a batch are a bad request, not a missing resource
	SamplesNotFoundErr:        http.StatusBadRequest,
	QCAlreadyLoggedErr:        http.StatusConflict,
	InvalidStateTransitionErr: http.StatusConflict,
	SampleStatusConflictErr:   http.StatusConflict,
}

var errCodeGRPC = map[ErrCode]codes.Code{
	Success:                   codes.OK,
	ParamErr:                  codes.InvalidArgument,
	UnmarshalWSDataErr:        codes.InvalidArgument,
	RecordNotFound:            codes.NotFound,
	DuplicateKeyErr:           codes.AlreadyExists,
	DuplicateInInputErr:       codes.InvalidArgument,
	SampleAlreadyExistErr:     codes.AlreadyExists,
	OrderNotFoundErr:          codes.NotFound,
	SampleNotFoundErr:         codes.NotFound,
	SamplesNotFoundErr:        codes.NotFound,
	QCAlreadyLoggedErr:        codes.AlreadyExists,
	InvalidStateTransitionErr: codes.FailedPrecondition,
	SampleStatusConflictErr:   codes.Aborted,
}

func (e ErrCode) Int() int {
	return int(e)
}

func (e ErrCode) String() string {
	if msg, ok := errCodeMsg[e]; ok {
		return msg
	}
	return errCodeMsg[UnDefineErr]
}

func (e ErrCode) Error() string {
	return e.String()
}

func (e ErrCode) HTTPStatus() int {
	if status, ok := errCodeHTTP[e]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (e ErrCode) GRPCCode() codes.Code {
	if c, ok := errCodeGRPC[e]; ok {
		return c
	}
	return codes.Internal
}

func (e ErrCode) WithMsg(msg string) error {
	return &CodeErr{Code: e, Msg: msg}
}

func (e ErrCode) WithMsgf(format string, args ...any) error {
	return &CodeErr{Code: e, Msg: fmt.Sprintf(format, args...)}
}

func (e ErrCode) WithErr(err error) error {
	if err == nil {
		return e
	}
	return &CodeErr{Code: e, Msg: err.Error(), err: err}
}

// WithData attaches a structured detail that callers can inspect to tell
// conditions apart, e.g. which samples were missing.
func (e ErrCode) WithData(data any) error {
	return &CodeErr{Code: e, Data: data}
}

type CodeErr struct {
	Code ErrCode
	Msg  string
	Data any
	err  error
}

func (c *CodeErr) Error() string {
	if c.Msg == "" {
		return c.Code.String()
	}
	return fmt.Sprintf("%s: %s", c.Code.String(), c.Msg)
}

func (c *CodeErr) Unwrap() error {
	return c.err
}

func (c *CodeErr) Is(target error) bool {
	var ec ErrCode
	if errors.As(target, &ec) {
		return c.Code == ec
	}
	return false
}

// Parse extracts the code, message and detail carried by err. Errors that
// carry no code are reported as UnDefineErr.
func Parse(err error) (ErrCode, string, any) {
	if err == nil {
		return Success, "", nil
	}

	var ce *CodeErr
	if errors.As(err, &ce) {
		msg := ce.Msg
		if msg == "" {
			msg = ce.Code.String()
		}
		return ce.Code, msg, ce.Data
	}

	var ec ErrCode
	if errors.As(err, &ec) {
		return ec, ec.String(), nil
	}

	return UnDefineErr, err.Error(), nil
}
