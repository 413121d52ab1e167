package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"ivorybeauty/internal/config"
	"ivorybeauty/internal/models"
)

type adminSignupInput struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	AdminCode string `json:"adminCode" binding:"required"`
}

// AdminSignup is gated by the shared admin access code; the code is only
// checked here, never stored.
func AdminSignup(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "AdminSignup")

		var input adminSignupInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		if config.AppEnv.AdminCode == "" || input.AdminCode != config.AppEnv.AdminCode {
			respondError(c, http.StatusForbidden, "invalid admin code")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), 12)
		if err != nil {
			logHandlerError(c, "AdminSignup", err)
			respondError(c, http.StatusInternalServerError, "could not create admin")
			return
		}

		admin := models.Admin{
			Name:         input.Name,
			Email:        strings.ToLower(strings.TrimSpace(input.Email)),
			PasswordHash: string(hash),
		}

		ctx, cancel := dbContext()
		defer cancel()

		inserted, err := db.Collection("admins").InsertOne(ctx, admin)
		if mongo.IsDuplicateKeyError(err) {
			respondError(c, http.StatusConflict, "an admin with this email already exists")
			return
		}
		if err != nil {
			logHandlerError(c, "AdminSignup", err)
			respondError(c, http.StatusInternalServerError, "could not create admin")
			return
		}
		admin.ID = inserted.InsertedID.(primitive.ObjectID)

		token, err := issueToken("adminId", admin.ID)
		if err != nil {
			logHandlerError(c, "AdminSignup", err)
			respondError(c, http.StatusInternalServerError, "could not create admin")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "admin": admin})
	}
}

func AdminLogin(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "AdminLogin")

		var input loginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}

		ctx, cancel := dbContext()
		defer cancel()

		var admin models.Admin
		err := db.Collection("admins").FindOne(ctx, bson.M{
			"email": strings.ToLower(strings.TrimSpace(input.Email)),
		}).Decode(&admin)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if err != nil {
			logHandlerError(c, "AdminLogin", err)
			respondError(c, http.StatusInternalServerError, "could not sign in")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)) != nil {
			respondError(c, http.StatusUnauthorized, "invalid email or password")
			return
		}

		token, err := issueToken("adminId", admin.ID)
		if err != nil {
			logHandlerError(c, "AdminLogin", err)
			respondError(c, http.StatusInternalServerError, "could not sign in")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "admin": admin})
	}
}
