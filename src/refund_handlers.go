package main

import (
	"fmt"
	"gawlo/src/lib/mailer"
	"gawlo/src/types"
	"gawlo/src/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

func refundHandlers(g *gin.RouterGroup, sink mailer.Mailer) *gin.RouterGroup {
	g.
		GET("", func(ctx *gin.Context) {
			var filters types.RefundQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			refunds, total, err := utils.ListRefunds(&filters)
			if err != nil {
				respondError(ctx, err)
				return
			}
			page := filters.Page
			if page < 1 {
				page = 1
			}
			limit := filters.Limit
			if limit < 1 {
				limit = 10
			}
			ctx.JSON(http.StatusOK, gin.H{
				"refunds": refunds,
				"total":   total,
				"page":    page,
				"limit":   limit,
			})
		}).
		POST("", func(ctx *gin.Context) {
			var body types.SubmitRefundRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			if _, err := utils.SubmitRefundRequest(&body); err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"message": "Demande de remboursement soumise avec succès."})
		}).
		PUT("/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			var body types.DecideRefundRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			result, err := utils.DecideRefund(params.ID, types.RefundStatus(body.Status), sink)
			if err != nil {
				respondError(ctx, err)
				return
			}
			if result.MailErr != nil {
				ctx.JSON(http.StatusOK, gin.H{
					"message": fmt.Sprintf("Remboursement %s avec succès, mais l'email n'a pas pu être envoyé.", result.Refund.Status),
				})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Remboursement %s avec succès.", result.Refund.Status)})
		})

	return g
}
