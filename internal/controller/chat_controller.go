package controller

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"loan-origination-be/internal/dto"
	"loan-origination-be/internal/pkg/serverutils"
	"loan-origination-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

var allowedSlipExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true,
}

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	UploadSalarySlip(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
}

type chatController struct {
	conversationService service.IConversationService
	uploadsDir          string
	documentsDir        string
}

func NewChatController(conversationService service.IConversationService, uploadsDir, documentsDir string) IChatController {
	return &chatController{
		conversationService: conversationService,
		uploadsDir:          uploadsDir,
		documentsDir:        documentsDir,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/loan/v1")
	h.Post("chat", c.Chat)
	h.Post("upload-salary", c.UploadSalarySlip)
	h.Get("download/:filename", c.Download)
	h.Post("reset", c.Reset)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.ProcessMessage(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process chat turn", res))
}

func (c *chatController) UploadSalarySlip(ctx *fiber.Ctx) error {
	sessionID := ctx.FormValue("session_id")
	if sessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id is required")
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "A salary slip file is required")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedSlipExtensions[ext] {
		return fiber.NewError(fiber.StatusBadRequest, "Only PDF, JPG and PNG files are accepted")
	}

	slipName := fmt.Sprintf("salary_%s_%s", sessionID, filepath.Base(file.Filename))
	slipPath := filepath.Join(c.uploadsDir, slipName)
	if err := ctx.SaveFile(file, slipPath); err != nil {
		return err
	}

	res, err := c.conversationService.ProcessUpload(ctx.Context(), sessionID, slipPath)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Session not found or expired")
		case errors.Is(err, service.ErrNotAwaitingUpload):
			return fiber.NewError(fiber.StatusBadRequest, "This session is not awaiting a salary slip")
		default:
			return err
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process salary slip", res))
}

func (c *chatController) Download(ctx *fiber.Ctx) error {
	filename := filepath.Base(ctx.Params("filename"))
	if !strings.HasPrefix(filename, "sanction_letter_") || !strings.HasSuffix(filename, ".pdf") {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document name")
	}

	return ctx.Download(filepath.Join(c.documentsDir, filename), filename)
}

func (c *chatController) Reset(ctx *fiber.Ctx) error {
	var req dto.ResetRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.conversationService.Reset(ctx.Context(), req.SessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Session not found or expired")
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reset session", nil))
}
