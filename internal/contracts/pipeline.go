package contracts

import "time"

// Stage labels pipeline steps in logs, metrics and persisted rows
type Stage string

const (
	// StageData S0: 가격 시계열 로드 및 무결성 검증 (internal/s0_data)
	StageData Stage = "S0_DATA"
	// StageRegime S1: 시장 국면 게이트와 유니버스 (internal/regime, internal/s1_universe)
	StageRegime Stage = "S1_REGIME"
	// StageSignals S2: 지표 점수 및 종합 점수 (internal/s2_signals)
	StageSignals Stage = "S2_SIGNALS"
	// StageSetup S3: 진입/손절/목표가 산출 (internal/setup)
	StageSetup Stage = "S3_SETUP"
	// StageSimulation S6: 사후 시뮬레이션 (internal/s6_simulation)
	StageSimulation Stage = "S6_SIMULATION"
	// StageGrading S7: 티어/지표별 성과 집계 (internal/audit)
	StageGrading Stage = "S7_GRADING"
)

func (s Stage) String() string { return string(s) }

// ResultKind classifies one symbol's batch result
type ResultKind string

const (
	ResultScored         ResultKind = "scored"
	ResultNoSignal       ResultKind = "no_signal"
	ResultVetoed         ResultKind = "vetoed"
	ResultInvalidSetup   ResultKind = "invalid_setup"
	ResultIntegrityError ResultKind = "integrity_error"
	ResultFailed         ResultKind = "failed"
)

// BatchSummary counts per-symbol results of one batch
type BatchSummary struct {
	RunID          string        `json:"run_id"`
	Date           time.Time     `json:"date"`
	Strategy       string        `json:"strategy"`
	Total          int           `json:"total"`
	Scored         int           `json:"scored"`
	NoSignal       int           `json:"no_signal"`
	Vetoed         int           `json:"vetoed"`
	InvalidSetup   int           `json:"invalid_setup"`
	IntegrityError int           `json:"integrity_error"`
	Failed         int           `json:"failed"`
	Duration       time.Duration `json:"duration"`
}

// Add records one result kind
func (s *BatchSummary) Add(kind ResultKind) {
	s.Total++
	switch kind {
	case ResultScored:
		s.Scored++
	case ResultNoSignal:
		s.NoSignal++
	case ResultVetoed:
		s.Vetoed++
	case ResultInvalidSetup:
		s.InvalidSetup++
	case ResultIntegrityError:
		s.IntegrityError++
	default:
		s.Failed++
	}
}
