package adapter

import (
	"net/url"

	"order-hub/internal/features/shipping/domain"
)

// GHTKCarrier maps requests to the Giao Hàng Tiết Kiệm API.
// Order weights are kilograms, fee weights are grams.
type GHTKCarrier struct {
	sender domain.Sender
}

// NewGHTKCarrier creates the GHTK mapper with the shop's pick-up address.
func NewGHTKCarrier(sender domain.Sender) *GHTKCarrier {
	return &GHTKCarrier{sender: sender}
}

type ghtkProduct struct {
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Quantity int     `json:"quantity"`
	Price    int64   `json:"price"`
	Code     string  `json:"product_code,omitempty"`
}

type ghtkOrder struct {
	ID           string  `json:"id"`
	PickName     string  `json:"pick_name"`
	PickAddress  string  `json:"pick_address"`
	PickProvince string  `json:"pick_province"`
	PickDistrict string  `json:"pick_district"`
	PickTel      string  `json:"pick_tel"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Province     string  `json:"province"`
	District     string  `json:"district"`
	Ward         string  `json:"ward,omitempty"`
	Tel          string  `json:"tel"`
	Note         string  `json:"note"`
	Value        int64   `json:"value"`
	Transport    string  `json:"transport"`
	PickMoney    int64   `json:"pick_money"`
	IsFreeship   int     `json:"is_freeship"`
	TotalWeight  float64 `json:"total_weight"`
}

type ghtkCreateOrder struct {
	Order    ghtkOrder     `json:"order"`
	Products []ghtkProduct `json:"products"`
}

type ghtkFee struct {
	PickProvince string `json:"pick_province"`
	PickDistrict string `json:"pick_district"`
	Province     string `json:"province"`
	District     string `json:"district"`
	Weight       int    `json:"weight"`
	Value        int64  `json:"value"`
	Transport    string `json:"transport"`
}

func (c *GHTKCarrier) ID() domain.CarrierID { return domain.CarrierGHTK }

func (c *GHTKCarrier) CreateShipment(req domain.ShipmentRequest) domain.Call {
	products := make([]ghtkProduct, 0, len(req.Items))
	for _, it := range req.Items {
		products = append(products, ghtkProduct{
			Name:     it.Name,
			Weight:   domain.GramsToKg(domain.OrDefault(it.WeightGrams, domain.DefaultItemWeightGrams)),
			Quantity: it.Quantity,
			Price:    domain.VND(it.Price),
			Code:     it.SKU,
		})
	}

	return domain.Post("/services/shipment/order", ghtkCreateOrder{
		Order: ghtkOrder{
			ID:           req.OrderNumber,
			PickName:     c.sender.Name,
			PickAddress:  c.sender.Address,
			PickProvince: c.sender.Province,
			PickDistrict: c.sender.District,
			PickTel:      c.sender.Phone,
			Name:         req.Recipient.Name,
			Address:      req.Recipient.Address,
			Province:     req.Recipient.Province,
			District:     req.Recipient.District,
			Ward:         req.Recipient.Ward,
			Tel:          req.Recipient.Phone,
			Note:         req.Note,
			Value:        domain.VND(req.Parcel.DeclaredValue),
			Transport:    "road",
			PickMoney:    domain.VND(req.CODAmount),
			IsFreeship:   0,
			TotalWeight:  domain.GramsToKg(domain.OrDefault(req.Parcel.WeightGrams, domain.DefaultParcelWeightGrams)),
		},
		Products: products,
	})
}

func (c *GHTKCarrier) TrackShipment(trackingNumber string) (domain.Call, bool) {
	return domain.Get("/services/shipment/v2/" + url.PathEscape(trackingNumber)), true
}

func (c *GHTKCarrier) CancelShipment(trackingNumber string) domain.Call {
	return domain.Post("/services/shipment/cancel/"+url.PathEscape(trackingNumber), struct{}{})
}

func (c *GHTKCarrier) Provinces() domain.Call {
	return domain.Get("/services/address/provinces")
}

func (c *GHTKCarrier) Services() domain.Call {
	return domain.Get("/services/shipment/services")
}

func (c *GHTKCarrier) CalculateFee(req domain.FeeRequest) domain.Call {
	return domain.Post("/services/shipment/fee", ghtkFee{
		PickProvince: firstNonEmpty(req.FromProvince, c.sender.Province),
		PickDistrict: firstNonEmpty(req.FromDistrict, c.sender.District),
		Province:     req.ToProvince,
		District:     req.ToDistrict,
		Weight:       domain.OrDefault(req.WeightGrams, domain.DefaultParcelWeightGrams),
		Value:        domain.VND(req.DeclaredValue),
		Transport:    "road",
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
