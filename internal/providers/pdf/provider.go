package pdf

import (
	"context"
	"io"
)

// Provider renders printable documents for permits and refunds.
type Provider interface {
	GeneratePermit(ctx context.Context, data PermitData) (io.Reader, error)
	GenerateRefund(ctx context.Context, data RefundData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GeneratePermit(ctx context.Context, data PermitData) (io.Reader, error) {
	return nil, nil
}

func (p *NoOpProvider) GenerateRefund(ctx context.Context, data RefundData) (io.Reader, error) {
	return nil, nil
}
