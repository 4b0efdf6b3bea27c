package insights

import "github.com/tirs/quota/internal/domain/entity"

// Nombres de segmento.
const (
	SegmentVIP      = "VIP"
	SegmentGrowth   = "Growth"
	SegmentActive   = "Active"
	SegmentInactive = "Inactive"
)

// SegmentResult un segmento con sus miembros (IDs en el orden de entrada).
type SegmentResult struct {
	Name    string   `json:"name"`
	Size    int      `json:"size"`
	Action  string   `json:"action"`
	Members []string `json:"members"`
}

// Segmentation partición de clientes en los cuatro segmentos.
type Segmentation struct {
	VIP      SegmentResult `json:"vip"`
	Growth   SegmentResult `json:"growth"`
	Active   SegmentResult `json:"active"`
	Inactive SegmentResult `json:"inactive"`
}

// All devuelve los segmentos en orden de prioridad.
func (s Segmentation) All() []SegmentResult {
	return []SegmentResult{s.VIP, s.Growth, s.Active, s.Inactive}
}

// SegmentOf nombre del segmento que corresponde a los Features del cliente.
func (a *Analysis) SegmentOf(f *Features) string {
	p := a.policy.Segment
	switch {
	case f.Revenue >= p.VIPRevenue && f.AcceptanceRate >= p.VIPAcceptanceRate:
		return SegmentVIP
	case f.Revenue >= p.GrowthRevenue && f.TenureDays < p.NewCustomerDays:
		return SegmentGrowth
	case f.HasQuotes() && f.DaysSinceLast <= p.ActiveWindowDays:
		return SegmentActive
	default:
		return SegmentInactive
	}
}

// SegmentAll asigna cada cliente a exactamente un segmento. Si customers es nil
// se segmentan los clientes del snapshot.
func (a *Analysis) SegmentAll(customers []*entity.Customer) Segmentation {
	if customers == nil {
		customers = a.snap.Customers
	}
	seg := Segmentation{
		VIP:      SegmentResult{Name: SegmentVIP, Action: "Premium support, upsell", Members: []string{}},
		Growth:   SegmentResult{Name: SegmentGrowth, Action: "Nurture, expand", Members: []string{}},
		Active:   SegmentResult{Name: SegmentActive, Action: "Regular engagement", Members: []string{}},
		Inactive: SegmentResult{Name: SegmentInactive, Action: "Reactivation campaign", Members: []string{}},
	}
	for _, c := range customers {
		if c == nil {
			continue
		}
		var target *SegmentResult
		switch a.SegmentOf(a.Features(c.ID)) {
		case SegmentVIP:
			target = &seg.VIP
		case SegmentGrowth:
			target = &seg.Growth
		case SegmentActive:
			target = &seg.Active
		default:
			target = &seg.Inactive
		}
		target.Members = append(target.Members, c.ID)
		target.Size++
	}
	return seg
}
