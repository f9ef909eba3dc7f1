package adapter

import (
	"net/url"
	"strconv"

	"order-hub/internal/features/shipping/domain"
)

// ViettelPostCarrier maps requests to the Viettel Post partner API.
type ViettelPostCarrier struct {
	sender domain.Sender
}

// NewViettelPostCarrier creates the Viettel Post mapper.
func NewViettelPostCarrier(sender domain.Sender) *ViettelPostCarrier {
	return &ViettelPostCarrier{sender: sender}
}

type vtpItem struct {
	ProductName     string `json:"PRODUCT_NAME"`
	ProductPrice    int64  `json:"PRODUCT_PRICE"`
	ProductWeight   int    `json:"PRODUCT_WEIGHT"`
	ProductQuantity int    `json:"PRODUCT_QUANTITY"`
}

// Location ids are left at 0; the partner API resolves addresses from text.
type vtpCreateOrder struct {
	OrderNumber        string    `json:"ORDER_NUMBER"`
	GroupAddressID     int       `json:"GROUPADDRESS_ID"`
	CusID              int       `json:"CUS_ID"`
	SenderFullname     string    `json:"SENDER_FULLNAME"`
	SenderAddress      string    `json:"SENDER_ADDRESS"`
	SenderPhone        string    `json:"SENDER_PHONE"`
	SenderWard         int       `json:"SENDER_WARD"`
	SenderDistrict     int       `json:"SENDER_DISTRICT"`
	SenderProvince     int       `json:"SENDER_PROVINCE"`
	ReceiverFullname   string    `json:"RECEIVER_FULLNAME"`
	ReceiverAddress    string    `json:"RECEIVER_ADDRESS"`
	ReceiverPhone      string    `json:"RECEIVER_PHONE"`
	ReceiverWard       int       `json:"RECEIVER_WARD"`
	ReceiverDistrict   int       `json:"RECEIVER_DISTRICT"`
	ReceiverProvince   int       `json:"RECEIVER_PROVINCE"`
	ProductName        string    `json:"PRODUCT_NAME"`
	ProductDescription string    `json:"PRODUCT_DESCRIPTION"`
	ProductQuantity    int       `json:"PRODUCT_QUANTITY"`
	ProductPrice       int64     `json:"PRODUCT_PRICE"`
	ProductWeight      int       `json:"PRODUCT_WEIGHT"`
	ProductLength      int       `json:"PRODUCT_LENGTH"`
	ProductWidth       int       `json:"PRODUCT_WIDTH"`
	ProductHeight      int       `json:"PRODUCT_HEIGHT"`
	OrderPayment       int       `json:"ORDER_PAYMENT"`
	OrderService       string    `json:"ORDER_SERVICE"`
	OrderServiceAdd    string    `json:"ORDER_SERVICE_ADD"`
	OrderVoucher       string    `json:"ORDER_VOUCHER"`
	OrderNote          string    `json:"ORDER_NOTE"`
	MoneyCollection    int64     `json:"MONEY_COLLECTION"`
	MoneyTotalFee      int64     `json:"MONEY_TOTALFEE"`
	ListItem           []vtpItem `json:"LIST_ITEM"`
}

type vtpFee struct {
	ProductWeight    int    `json:"PRODUCT_WEIGHT"`
	ProductPrice     int64  `json:"PRODUCT_PRICE"`
	MoneyCollection  int64  `json:"MONEY_COLLECTION"`
	SenderProvince   int    `json:"SENDER_PROVINCE"`
	SenderDistrict   int    `json:"SENDER_DISTRICT"`
	ReceiverProvince int    `json:"RECEIVER_PROVINCE"`
	ReceiverDistrict int    `json:"RECEIVER_DISTRICT"`
	ProductLength    int    `json:"PRODUCT_LENGTH"`
	ProductWidth     int    `json:"PRODUCT_WIDTH"`
	ProductHeight    int    `json:"PRODUCT_HEIGHT"`
	ProductType      string `json:"PRODUCT_TYPE"`
	NationalType     int    `json:"NATIONAL_TYPE"`
}

type vtpOrderNumber struct {
	OrderNumber string `json:"order_number"`
}

func (c *ViettelPostCarrier) ID() domain.CarrierID { return domain.CarrierViettelPost }

func (c *ViettelPostCarrier) CreateShipment(req domain.ShipmentRequest) domain.Call {
	items := make([]vtpItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, vtpItem{
			ProductName:     it.Name,
			ProductPrice:    domain.VND(it.Price),
			ProductWeight:   domain.OrDefault(it.WeightGrams, domain.DefaultItemWeightGrams),
			ProductQuantity: it.Quantity,
		})
	}

	service := ""
	if req.ServiceID > 0 {
		service = strconv.Itoa(req.ServiceID)
	}

	return domain.Post("/order/createOrder", vtpCreateOrder{
		OrderNumber:        req.OrderNumber,
		SenderFullname:     c.sender.Name,
		SenderAddress:      c.sender.Address,
		SenderPhone:        c.sender.Phone,
		ReceiverFullname:   req.Recipient.Name,
		ReceiverAddress:    req.Recipient.Address,
		ReceiverPhone:      req.Recipient.Phone,
		ProductName:        "Order " + req.OrderNumber,
		ProductDescription: req.Note,
		ProductQuantity:    1,
		ProductPrice:       domain.VND(req.Parcel.DeclaredValue),
		ProductWeight:      domain.OrDefault(req.Parcel.WeightGrams, domain.DefaultParcelWeightGrams),
		ProductLength:      domain.OrDefault(req.Parcel.LengthCM, domain.DefaultDimensionCM),
		ProductWidth:       domain.OrDefault(req.Parcel.WidthCM, domain.DefaultDimensionCM),
		ProductHeight:      domain.OrDefault(req.Parcel.HeightCM, domain.DefaultDimensionCM),
		OrderPayment:       0,
		OrderService:       service,
		OrderNote:          req.Note,
		MoneyCollection:    domain.VND(req.CODAmount),
		ListItem:           items,
	})
}

func (c *ViettelPostCarrier) TrackShipment(trackingNumber string) (domain.Call, bool) {
	return domain.Get("/order/tracking?order_number=" + url.QueryEscape(trackingNumber)), true
}

func (c *ViettelPostCarrier) CancelShipment(trackingNumber string) domain.Call {
	return domain.Post("/order/cancelOrder", vtpOrderNumber{OrderNumber: trackingNumber})
}

func (c *ViettelPostCarrier) Provinces() domain.Call {
	return domain.Get("/categories/listProvinceById?provinceId=")
}

func (c *ViettelPostCarrier) Services() domain.Call {
	return domain.Get("/categories/listService")
}

func (c *ViettelPostCarrier) CalculateFee(req domain.FeeRequest) domain.Call {
	return domain.Post("/order/getPriceAll", vtpFee{
		ProductWeight:    domain.OrDefault(req.WeightGrams, domain.DefaultParcelWeightGrams),
		ProductPrice:     domain.VND(req.DeclaredValue),
		MoneyCollection:  domain.VND(req.CODAmount),
		SenderProvince:   req.FromProvinceID,
		SenderDistrict:   req.FromDistrictID,
		ReceiverProvince: req.ToProvinceID,
		ReceiverDistrict: req.ToDistrictID,
		ProductLength:    domain.OrDefault(req.LengthCM, domain.DefaultDimensionCM),
		ProductWidth:     domain.OrDefault(req.WidthCM, domain.DefaultDimensionCM),
		ProductHeight:    domain.OrDefault(req.HeightCM, domain.DefaultDimensionCM),
		ProductType:      "HH",
		NationalType:     1,
	})
}
