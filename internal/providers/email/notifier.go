package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	"go.uber.org/zap"
)

const permitMailTemplate = `<html>
<body>
<p>Hei {{.Name}},</p>
<p>{{.Lead}}</p>
<table>
<tr><td>Pysäköintitunnus</td><td>{{.PermitID}}</td></tr>
<tr><td>Ajoneuvo</td><td>{{.Vehicle}}</td></tr>
<tr><td>Alue</td><td>{{.Zone}}</td></tr>
<tr><td>Voimassa</td><td>{{.Validity}}</td></tr>
</table>
<p>Terveisin,<br>Pysäköintipalvelut</p>
</body>
</html>`

var permitMail = template.Must(template.New("permit").Parse(permitMailTemplate))

type permitMailData struct {
	Name     string
	Lead     string
	PermitID string
	Vehicle  string
	Zone     string
	Validity string
}

// Notifier sends permit lifecycle mail to the permit holder. A permit whose
// customer has no email address is skipped silently.
type Notifier struct {
	provider Provider
	log      *zap.Logger
}

func NewNotifier(provider Provider, log *zap.Logger) *Notifier {
	return &Notifier{provider: provider, log: log.Named("providers.email")}
}

func (n *Notifier) PermitCreated(ctx context.Context, permit permitdomain.ParkingPermit) error {
	return n.send(ctx, permit, "Pysäköintitunnus myönnetty", "Pysäköintitunnuksesi on luotu.")
}

func (n *Notifier) PermitUpdated(ctx context.Context, permit permitdomain.ParkingPermit) error {
	return n.send(ctx, permit, "Pysäköintitunnusta päivitetty", "Pysäköintitunnuksesi tietoja on muutettu.")
}

func (n *Notifier) PermitEnded(ctx context.Context, permit permitdomain.ParkingPermit) error {
	return n.send(ctx, permit, "Pysäköintitunnus päättynyt", "Pysäköintitunnuksesi on päätetty.")
}

func (n *Notifier) send(ctx context.Context, permit permitdomain.ParkingPermit, subject, lead string) error {
	if permit.Customer == nil || permit.Customer.Email == "" {
		n.log.Debug("permit holder has no email address, skipping notification",
			zap.String("permit_id", permit.ID.String()))
		return nil
	}

	data := permitMailData{
		Name:     permit.Customer.FullName(),
		Lead:     lead,
		PermitID: permit.ID.String(),
		Validity: validity(permit),
	}
	if permit.Vehicle != nil {
		data.Vehicle = permit.Vehicle.Description()
	}
	if permit.Zone != nil {
		data.Zone = permit.Zone.Name
	}

	var body bytes.Buffer
	if err := permitMail.Execute(&body, data); err != nil {
		return fmt.Errorf("render permit mail: %w", err)
	}

	return n.provider.Send(ctx, []string{permit.Customer.Email}, subject, body.String())
}

func validity(permit permitdomain.ParkingPermit) string {
	const layout = "2.1.2006"
	if permit.EndTime != nil {
		return fmt.Sprintf("%s - %s", permit.StartTime.Format(layout), permit.EndTime.Format(layout))
	}
	return fmt.Sprintf("%s alkaen, toistaiseksi", permit.StartTime.Format(layout))
}
