package main

import (
	"fmt"
	"gawlo/src/config"
	"gawlo/src/lib/mailer"
	"gawlo/src/middlewares"
	"gawlo/src/types"
	"gawlo/src/utils"
	"log"
	"net/http"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

func eventHandlers(g *gin.RouterGroup, sink mailer.Mailer) *gin.RouterGroup {
	g.
		GET("", func(ctx *gin.Context) {
			var filters types.EventQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			events, pagination, err := utils.QueryEvents(&filters)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"events":     events,
				"pagination": pagination,
			})
		}).
		POST("/purchaseTickets", func(ctx *gin.Context) {
			var body types.PurchaseTicketsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			result, err := utils.PurchaseTickets(&body, sink)
			if err != nil {
				respondError(ctx, err)
				return
			}
			if result.MailErr != nil {
				// Inventory committed; only the confirmation email failed.
				ctx.JSON(http.StatusOK, gin.H{
					"message": "Achat réussi, mais l'email de confirmation n'a pas pu être envoyé.",
					"event": gin.H{
						"id":               result.EventID,
						"title":            result.EventTitle,
						"ticketsRemaining": result.TicketsRemaining,
					},
				})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"message": "Billets achetés avec succès.",
				"event": gin.H{
					"id":               result.EventID,
					"title":            result.EventTitle,
					"ticketsRemaining": result.TicketsRemaining,
				},
			})
		})

	authed := g.Group("")
	authed.Use(middlewares.AuthMiddleware, middlewares.RequireRole(types.RoleOrganizer))
	authed.
		POST("", func(ctx *gin.Context) {
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": "Champs obligatoires manquants."})
				return
			}

			form, err := ctx.MultipartForm()
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
				return
			}
			files := form.File["images"]
			if len(files) > config.MaxEventImages {
				ctx.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("au maximum %d images par événement", config.MaxEventImages)})
				return
			}
			imagePaths := make([]string, 0, len(files))
			for _, file := range files {
				filename := fmt.Sprintf("%s-%s%s", slug.Make(body.Title), uuid.NewString(), filepath.Ext(file.Filename))
				dst := path.Join(uploadsDir(), filename)
				if err := ctx.SaveUploadedFile(file, dst); err != nil {
					log.Printf("Error saving uploaded image: %s\n", err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"message": "Erreur lors de la création de l'événement."})
					return
				}
				imagePaths = append(imagePaths, "/uploads/"+filename)
			}

			organizerID := ctx.GetUint("id")
			event, err := utils.CreateNewEvent(&body, organizerID, imagePaths)
			if err != nil {
				respondError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, event)
		})

	return g
}
