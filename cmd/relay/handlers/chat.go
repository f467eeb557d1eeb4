package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-relay/cmd/relay/dto"
	"chat-relay/cmd/relay/services"
	"chat-relay/config"
)

// ChatHandler godoc
// @Summary      Relay a conversation
// @Description  Forward an ordered message sequence to the upstream completion API and return its response verbatim
// @Tags         chat
// @Accept       json
// @Param        request  body  dto.ChatRequestDTO  true  "Ordered messages plus optional model id"
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      429  {object}  dto.ErrorResponseDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Failure      503  {object}  dto.ErrorResponseDTO
// @Router       /chat [post]
func ChatHandler(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ChatRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "Valid messages array is required"})
			return
		}

		raw, chatErr := svc.Complete(c.Request.Context(), services.ChatInput{
			Messages: req.Messages,
			ModelID:  req.ModelID,
		})
		if chatErr != nil {
			c.JSON(chatErr.StatusCode, dto.ErrorResponseDTO{Error: chatErr.Message, Details: chatErr.Details})
			return
		}

		// 업스트림 응답은 그대로 통과시킨다.
		c.Data(http.StatusOK, "application/json", raw)
	}
}

// ListModelsHandler godoc
// @Summary      List selectable models
// @Description  List the configured model catalog; exactly one entry is the default
// @Tags         chat
// @Produce      json
// @Success      200  {array}  config.ModelOption
// @Router       /models [get]
func ListModelsHandler(cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, cfg.Models)
	}
}
