// Package catalog provides the HTTP client for the catalog management API.
// It wraps outbound requests with bearer-token authentication, refreshing the
// token before any call when it is near expiry, and exposes typed operations
// for items, rooms, SKU lookup and substitution, and work requests.
package catalog

// ItemDivision flags an item's availability within one regional division.
type ItemDivision struct {
	Active bool `json:"Active"`
}

// ItemDivisions maps the three regional divisions to their activation state.
type ItemDivisions struct {
	FL *ItemDivision `json:"FL,omitempty"`
	SE *ItemDivision `json:"SE,omitempty"`
	TX *ItemDivision `json:"TX,omitempty"`
}

// ItemAttributes carries the optional descriptive attribute lists of an item.
type ItemAttributes struct {
	Color      []string `json:"Color,omitempty"`
	Decor      []string `json:"Decor,omitempty"`
	Finish     []string `json:"Finish,omitempty"`
	Features   []string `json:"Features,omitempty"`
	Material   []string `json:"Material,omitempty"`
	Movement   []string `json:"Movement,omitempty"`
	PieceCount []string `json:"PieceCount,omitempty"`
	Shape      []string `json:"Shape,omitempty"`
	Size       []string `json:"Size,omitempty"`
	Style      []string `json:"Style,omitempty"`
	Theme      []string `json:"Theme,omitempty"`
	Team       []string `json:"Team,omitempty"`
}

// PackageProduct is one SKU/quantity entry of a package.
type PackageProduct struct {
	Sku      string `json:"Sku"`
	Quantity int    `json:"Quantity"`
}

// ItemPackageProducts maps divisions to their package contents.
type ItemPackageProducts struct {
	FL []PackageProduct `json:"FL,omitempty"`
	SE []PackageProduct `json:"SE,omitempty"`
	TX []PackageProduct `json:"TX,omitempty"`
}

// Item is the full catalog item record as returned by GET /item/{sku}.
type Item struct {
	Sku             string               `json:"Sku"`
	Site            string               `json:"Site"`
	Category        string               `json:"Category"`
	Collection      string               `json:"Collection"`
	Brand           string               `json:"Brand,omitempty"`
	RTGAlias        string               `json:"RTGAlias"`
	Title           string               `json:"Title"`
	AdvertisingCopy string               `json:"AdvertisingCopy"`
	Image           string               `json:"Image"`
	AdditionalNotes string               `json:"AdditionalNotes,omitempty"`
	Dimensions      string               `json:"Dimensions"`
	GenericName     string               `json:"GenericName"`
	Attributes      *ItemAttributes      `json:"Attributes,omitempty"`
	DeliveryType    string               `json:"DeliveryType"`
	DeliverySubType string               `json:"DeliverySubType,omitempty"`
	ShippingCode    string               `json:"ShippingCode,omitempty"`
	SingleItemRoom  bool                 `json:"SingleItemRoom,omitempty"`
	GroupKey        string               `json:"GroupKey,omitempty"`
	GroupKeyModifier string              `json:"GroupKeyModifier,omitempty"`
	Divisions       ItemDivisions        `json:"Divisions"`
	PackageProducts *ItemPackageProducts `json:"PackageProducts,omitempty"`
}

// ItemNew is the payload for creating an item via POST /item.
type ItemNew struct {
	Sku             string          `json:"Sku"`
	Site            string          `json:"Site"`
	Category        string          `json:"Category"`
	Collection      string          `json:"Collection"`
	Brand           string          `json:"Brand,omitempty"`
	PDMDescription  string          `json:"PDMDescription"`
	Title           string          `json:"Title"`
	AdvertisingCopy string          `json:"AdvertisingCopy"`
	Image           string          `json:"Image"`
	AdditionalNotes string          `json:"AdditionalNotes,omitempty"`
	Dimensions      string          `json:"Dimensions"`
	GenericName     string          `json:"GenericName"`
	Attributes      *ItemAttributes `json:"Attributes,omitempty"`
	DeliveryType    string          `json:"DeliveryType"`
	DeliverySubType string          `json:"DeliverySubType,omitempty"`
	ShippingCode    string          `json:"ShippingCode,omitempty"`
	SingleItemRoom  bool            `json:"SingleItemRoom,omitempty"`
	GroupKey        string          `json:"GroupKey,omitempty"`
	GroupKeyModifier string         `json:"GroupKeyModifier,omitempty"`
	Divisions       ItemDivisions   `json:"Divisions"`
}

// ItemPartialUpdate carries the optional fields of a PATCH /item/{sku}
// request. Nil fields are omitted from the request body entirely, so the API
// only sees the fields being changed.
type ItemPartialUpdate struct {
	RTGAlias        *string `json:"RTGAlias,omitempty"`
	Title           *string `json:"Title,omitempty"`
	AdvertisingCopy *string `json:"AdvertisingCopy,omitempty"`
	Image           *string `json:"Image,omitempty"`
	AdditionalNotes *string `json:"AdditionalNotes,omitempty"`
	Dimensions      *string `json:"Dimensions,omitempty"`
	GenericName     *string `json:"GenericName,omitempty"`
	DeliveryType    *string `json:"DeliveryType,omitempty"`
	DeliverySubType *string `json:"DeliverySubType,omitempty"`
	ShippingCode    *string `json:"ShippingCode,omitempty"`
	SingleItemRoom  *bool   `json:"SingleItemRoom,omitempty"`
	GroupKey        *string `json:"GroupKey,omitempty"`
	GroupKeyModifier *string `json:"GroupKeyModifier,omitempty"`
}

// ItemDeleteRequest is the body of DELETE /item/{sku} and /room/{sku}.
type ItemDeleteRequest struct {
	Site             string `json:"Site"`
	Division         string `json:"Division,omitempty"`
	DeleteImportData bool   `json:"DeleteImportData"`
}

// RoomItem is one SKU/quantity entry of a room's contents.
type RoomItem struct {
	Sku      string `json:"Sku"`
	Quantity int    `json:"Quantity"`
}

// RoomItems maps divisions to their room contents.
type RoomItems struct {
	FL []RoomItem `json:"FL,omitempty"`
	SE []RoomItem `json:"SE,omitempty"`
	TX []RoomItem `json:"TX,omitempty"`
}

// SwapRoomItemsRequest is the body of POST /room/swap-items.
type SwapRoomItemsRequest struct {
	RoomSku          string     `json:"RoomSku"`
	SwapOutRoomItems []RoomItem `json:"SwapOutRoomItems"`
	SwapInRoomItems  []RoomItem `json:"SwapInRoomItems"`
	Divisions        []string   `json:"Divisions"`
}

// Room is the full catalog room record as returned by GET /room/{sku}.
type Room struct {
	Sku             string              `json:"Sku"`
	Site            string              `json:"Site"`
	Category        string              `json:"Category"`
	Collection      string              `json:"Collection"`
	Brand           string              `json:"Brand,omitempty"`
	RTGAlias        string              `json:"RTGAlias,omitempty"`
	Title           string              `json:"Title,omitempty"`
	AdvertisingCopy string              `json:"AdvertisingCopy,omitempty"`
	Image           string              `json:"Image,omitempty"`
	AdditionalNotes string              `json:"AdditionalNotes,omitempty"`
	Attributes      *ItemAttributes     `json:"Attributes,omitempty"`
	DeliveryType    string              `json:"DeliveryType,omitempty"`
	GroupKey        string              `json:"GroupKey,omitempty"`
	GroupKeyModifier string             `json:"GroupKeyModifier,omitempty"`
	ShippingCode    string              `json:"ShippingCode,omitempty"`
	Divisions       ItemDivisions       `json:"Divisions"`
	PackageProducts ItemPackageProducts `json:"PackageProducts"`
	RoomItems       RoomItems           `json:"RoomItems"`
}

// SkuLookupResponse is the result of GET /sku/{sku}/lookup.
type SkuLookupResponse struct {
	Sku       string         `json:"sku"`
	Site      string         `json:"site"`
	Type      string         `json:"type"`
	Divisions map[string]any `json:"divisions"`
	Exists    bool           `json:"exists"`
}

// SkuSubstitutionRequest is the body of the substitution endpoints. The API
// uses space-separated field names on the wire.
type SkuSubstitutionRequest struct {
	Site            string   `json:"Site"`
	ReplacedSkus    []string `json:"Replaced Skus"`
	SubstitutedSkus []string `json:"Substituted Skus"`
	Divisions       []string `json:"Divisions"`
	PackageSkus     []string `json:"Package Skus,omitempty"`
}

// WorkRequest is a catalog work request as returned by the workrequests
// endpoints. The API returns additional fields; only the ones the CLI reads
// are modeled, with the rest available via the raw response.
type WorkRequest struct {
	ID        int    `json:"id"`
	Status    string `json:"status"`
	RouteName string `json:"route_name"`
}
