package model

// Message types carried on the relay socket. Every frame is a JSON object
// with a Type discriminator; viewers dispatch on it.
const (
	MessageTypeCameraCommand = "cameraCommand"
	MessageTypeAddToCart     = "addToCart"

	CameraActionMoveTo = "moveTo"
	CartActionAddItem  = "addItem"
)

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// CameraParams is the coordinate payload of a moveTo command.
type CameraParams struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Target Vec3    `json:"target"`
}

// CameraCommand moves every connected viewer's camera.
type CameraCommand struct {
	Type   string       `json:"type"`
	Action string       `json:"action"`
	Params CameraParams `json:"params"`
}

func NewCameraCommand(params CameraParams) CameraCommand {
	return CameraCommand{
		Type:   MessageTypeCameraCommand,
		Action: CameraActionMoveTo,
		Params: params,
	}
}

// CartLineCost matches the storefront cart cost shape.
type CartLineCost struct {
	TotalAmount Money `json:"totalAmount"`
}

// CartItemProduct is the denormalized product snapshot inside a cart line,
// rich enough for a viewer to render the line without a second fetch.
type CartItemProduct struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Handle          string     `json:"handle"`
	Description     string     `json:"description"`
	DescriptionHTML string     `json:"descriptionHtml"`
	FeaturedImage   Image      `json:"featuredImage"`
	CurrencyCode    string     `json:"currencyCode"`
	PriceRange      PriceRange `json:"priceRange"`
}

type CartMerchandise struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	SelectedOptions []string        `json:"selectedOptions"`
	Product         CartItemProduct `json:"product"`
}

type CartItem struct {
	ID          string          `json:"id"`
	Quantity    int             `json:"quantity"`
	Cost        CartLineCost    `json:"cost"`
	Merchandise CartMerchandise `json:"merchandise"`
}

// CartCommand adds a line to every connected viewer's local cart.
// GlobalPurchaseID is the idempotency key: receivers must apply a given
// id at most once.
type CartCommand struct {
	Type             string   `json:"type"`
	Action           string   `json:"action"`
	ProductID        string   `json:"productId"`
	VariantID        string   `json:"variantId"`
	Quantity         int      `json:"quantity"`
	CartItem         CartItem `json:"cartItem"`
	GlobalPurchaseID string   `json:"globalPurchaseId"`
}
