package contracts

import (
	"errors"
	"fmt"
)

// Error taxonomy
// ⭐ SSOT: 배치 결과 분류는 이 sentinel 들로만 판단 (errors.Is)
var (
	// ErrInsufficientHistory 가장 긴 지표 lookback 보다 봉이 적음 → no-signal
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrInvalidSetup stop >= entry, target <= entry, 손익비 미달 → 해당 setup skip
	ErrInvalidSetup = errors.New("invalid trade setup")

	// ErrDataIntegrity 날짜 비단조/중복 등 → 해당 종목 실패, 배치는 계속
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrUpstreamUnavailable 저장소 접근 불가 (재시도 소진) → 배치 실패
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNotFound 조회 대상 없음
	ErrNotFound = errors.New("not found")
)

// IntegrityError describes a bar sequence that violates the series invariants
type IntegrityError struct {
	Symbol string
	Index  int
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: bar %d: %s", e.Symbol, e.Index, e.Reason)
}

func (e *IntegrityError) Unwrap() error { return ErrDataIntegrity }

// SetupError explains why a trade setup was rejected
type SetupError struct {
	Symbol string
	Reason string
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s: %s", e.Symbol, e.Reason)
}

func (e *SetupError) Unwrap() error { return ErrInvalidSetup }
