package pdf

import (
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PermitData struct {
	PermitID     string
	Status       string
	ContractType string

	HolderName    string
	HolderAddress string

	Vehicle      string
	Registration string
	LowEmission  bool

	Zone     string
	Validity string

	Items []PriceItem

	Total string
}

type PriceItem struct {
	Description string
	Months      int
	UnitPrice   string
	Amount      string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GeneratePermit(ctx context.Context, data PermitData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(15,
		text.NewCol(12, "Pysäköintitunnus / Parking permit", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Permit: "+data.PermitID, props.Text{Top: 0}),
			text.New("Status: "+data.Status, props.Text{Top: 4}),
			text.New("Contract: "+data.ContractType, props.Text{Top: 8}),
			text.New("Valid: "+data.Validity, props.Text{Top: 12}),
		),
		col.New(6).Add(
			text.New(data.HolderName, props.Text{Style: fontstyle.Bold}),
			text.New(data.HolderAddress, props.Text{Top: 5}),
		),
	)

	vehicle := data.Vehicle
	if data.LowEmission {
		vehicle += " (low emission)"
	}
	m.AddRow(15,
		col.New(6).Add(
			text.New("Vehicle", props.Text{Style: fontstyle.Bold}),
			text.New(vehicle, props.Text{Top: 5}),
			text.New(data.Registration, props.Text{Top: 9}),
		),
		col.New(6).Add(
			text.New("Zone", props.Text{Style: fontstyle.Bold}),
			text.New(data.Zone, props.Text{Top: 5}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Period", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Months", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range data.Items {
		m.AddRow(10,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, strconv.Itoa(item.Months), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, data.Total, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
