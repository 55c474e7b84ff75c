package engine

import (
	"errors"
	"fmt"
	"strings"

	dm "github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/model"
)

// Stage 流水线阶段
type Stage string

const (
	StageRequest   Stage = "request"
	StageDiscovery Stage = "discovery"
	StageRetrieval Stage = "retrieval"
	StageSynthesis Stage = "synthesis"
)

// Kind 结果分类
type Kind string

const (
	KindInvalidRequest             Kind = "InvalidRequest"
	KindDiscoveryFailure           Kind = "DiscoveryFailure"
	KindNoCompetitorsFound         Kind = "NoCompetitorsFound"
	KindRetrievalPartial           Kind = "RetrievalPartial"
	KindRetrievalFailure           Kind = "RetrievalFailure"
	KindSynthesisSchemaFailure     Kind = "SynthesisSchemaFailure"
	KindSynthesisCapabilityFailure Kind = "SynthesisCapabilityFailure"
)

// ErrSchemaViolation 模型输出未通过 schema 校验
var ErrSchemaViolation = errors.New("model output failed schema validation")

// SchemaError 列出模型输出中所有不符合 schema 的位置
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSchemaViolation, strings.Join(e.Violations, "; "))
}

// Is 使 errors.Is(err, ErrSchemaViolation) 成立
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaViolation
}

// PipelineError 带来源阶段的流水线失败
type PipelineError struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s stage failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func newPipelineError(stage Stage, err error) *PipelineError {
	return &PipelineError{Stage: stage, Kind: classify(stage, err), Err: err}
}

func classify(stage Stage, err error) Kind {
	switch stage {
	case StageRequest:
		return KindInvalidRequest
	case StageDiscovery:
		return KindDiscoveryFailure
	case StageRetrieval:
		return KindRetrievalFailure
	}
	if errors.Is(err, ErrSchemaViolation) {
		return KindSynthesisSchemaFailure
	}
	return KindSynthesisCapabilityFailure
}

// KindOf 返回错误对应的分类，非流水线错误返回空串
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, dm.ErrInvalidRequest) {
		return KindInvalidRequest
	}
	return ""
}
