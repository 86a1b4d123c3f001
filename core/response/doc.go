// Package response renders JSON results and structured errors for gin
// handlers.
//
//	func (h *handler) get(c *gin.Context) {
//		b, err := h.svc.Get(c.Request.Context(), c.Param("id"))
//		if errors.Is(err, booking.ErrNotFound) {
//			response.Error(c, response.ErrNotFound.WithMessage("booking not found"))
//			return
//		}
//		if err != nil {
//			response.Error(c, err)
//			return
//		}
//		response.JSON(c, http.StatusOK, b)
//	}
//
// Errors render as {"code": "...", "message": "...", "details": {...}}.
package response
