package models

// Seller is the create payload of the seller table.
type Seller struct {
	FirstName string  `json:"nom_ven" binding:"required"`
	LastName  string  `json:"ape_ven" binding:"required"`
	Salary    float64 `json:"sue_ven" binding:"required,gte=0"`
	HiredOn   string  `json:"fin_ven" binding:"required,datetime=2006-01-02"`
	Kind      string  `json:"tip_ven" binding:"required"`
}

func (s Seller) ToMap() map[string]any {
	return map[string]any{
		"nom_ven": s.FirstName,
		"ape_ven": s.LastName,
		"sue_ven": s.Salary,
		"fin_ven": s.HiredOn,
		"tip_ven": s.Kind,
	}
}

type Product struct {
	Description string  `json:"des_pro" binding:"required"`
	Price       float64 `json:"pre_pro" binding:"required,gte=0"`
	Stock       int     `json:"sac_pro"`
	MinStock    int     `json:"smi_pro"`
	Unit        string  `json:"uni_pro" binding:"required"`
	Line        string  `json:"lin_pro" binding:"required"`
	Tax         string  `json:"imp_pro" binding:"required,oneof=F V"`
}

func (p Product) ToMap() map[string]any {
	return map[string]any{
		"des_pro": p.Description,
		"pre_pro": p.Price,
		"sac_pro": p.Stock,
		"smi_pro": p.MinStock,
		"uni_pro": p.Unit,
		"lin_pro": p.Line,
		"imp_pro": p.Tax,
	}
}

type InvoiceDetail struct {
	InvoiceNumber *int64  `json:"num_fac,omitempty"`
	ProductCode   int64   `json:"cod_pro" binding:"required"`
	Quantity      int     `json:"can_ven" binding:"required,gt=0"`
	Price         float64 `json:"pre_ven" binding:"required,gte=0"`
}

func (d InvoiceDetail) ToMap() map[string]any {
	m := map[string]any{
		"cod_pro": d.ProductCode,
		"can_ven": d.Quantity,
		"pre_ven": d.Price,
	}
	if d.InvoiceNumber != nil {
		m["num_fac"] = *d.InvoiceNumber
	}
	return m
}

type Invoice struct {
	Status     string          `json:"est_fac"`
	SellerCode int64           `json:"cod_ven" binding:"required"`
	TaxRate    float64         `json:"por_igv" binding:"gte=0"`
	Details    []InvoiceDetail `json:"detalle_factura" binding:"required,min=1,dive"`
}

// Header returns the invoice row without its detail lines.
func (i Invoice) Header() map[string]any {
	status := i.Status
	if status == "" {
		status = "Pendiente"
	}
	return map[string]any{
		"est_fac": status,
		"cod_ven": i.SellerCode,
		"por_igv": i.TaxRate,
	}
}
