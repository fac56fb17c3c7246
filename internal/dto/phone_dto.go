package dto

type SearchNumbersRequest struct {
	Country  string `query:"country"`
	AreaCode string `query:"area_code"`
	Contains string `query:"contains"`
	Limit    int    `query:"limit"`
}

type AvailableNumberResponse struct {
	PhoneNumber  string `json:"phone_number"`
	FriendlyName string `json:"friendly_name"`
	Locality     string `json:"locality"`
	Region       string `json:"region"`
	IsoCountry   string `json:"iso_country"`
}

type PurchaseNumberRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
}

type OwnedNumberResponse struct {
	Sid          string `json:"sid"`
	PhoneNumber  string `json:"phone_number"`
	FriendlyName string `json:"friendly_name"`
	VoiceURL     string `json:"voice_url,omitempty"`
	Status       string `json:"status"`
}
