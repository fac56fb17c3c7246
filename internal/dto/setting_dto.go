package dto

type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
	Group string `json:"group"`
}

type UpdateSettingRequest struct {
	Value string `json:"value" validate:"required"`
	Type  string `json:"type" validate:"omitempty,oneof=string int bool json"`
	Group string `json:"group"`
}

type AssistantTemplateResponse struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	FirstMessage string `json:"first_message"`
	SystemPrompt string `json:"system_prompt"`
}
