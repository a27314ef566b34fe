package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type RefundData struct {
	RefundID string
	OrderID  string
	Status   string

	HolderName string
	IBAN       string

	Description string
	Amount      string
	CreatedAt   string
}

func (p *PDFProvider) GenerateRefund(ctx context.Context, data RefundData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(15,
		text.NewCol(12, "Palautus / Refund", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(25,
		col.New(6).Add(
			text.New("Refund: "+data.RefundID, props.Text{Top: 0}),
			text.New("Order: "+data.OrderID, props.Text{Top: 4}),
			text.New("Status: "+data.Status, props.Text{Top: 8}),
			text.New("Created: "+data.CreatedAt, props.Text{Top: 12}),
		),
		col.New(6).Add(
			text.New(data.HolderName, props.Text{Style: fontstyle.Bold}),
			text.New("IBAN: "+data.IBAN, props.Text{Top: 5}),
		),
	)

	m.AddRow(10,
		text.NewCol(10, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		text.NewCol(10, data.Description, props.Text{Size: 9}),
		text.NewCol(2, data.Amount, props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, data.Amount, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
