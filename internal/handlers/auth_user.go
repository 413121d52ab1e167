package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"ivorybeauty/internal/config"
	"ivorybeauty/internal/middleware"
	"ivorybeauty/internal/models"
)

// issueToken signs a bearer token carrying a single subject claim
// ("userId" or "adminId").
func issueToken(claim string, subject primitive.ObjectID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		claim: subject.Hex(),
		"iat": now.Unix(),
		"exp": now.Add(config.AppEnv.TokenTTL).Unix(),
	})
	return token.SignedString([]byte(config.AppEnv.JWTSecret))
}

type signupInput struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Address         string `json:"address" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func Signup(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "Signup")

		var input signupInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		if input.Password != input.ConfirmPassword {
			respondError(c, http.StatusBadRequest, "passwords do not match")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), 10)
		if err != nil {
			logHandlerError(c, "Signup", err)
			respondError(c, http.StatusInternalServerError, "could not create account")
			return
		}

		user := models.User{
			Name:         input.Name,
			Email:        strings.ToLower(strings.TrimSpace(input.Email)),
			Address:      input.Address,
			Phone:        input.Phone,
			PasswordHash: string(hash),
		}

		ctx, cancel := dbContext()
		defer cancel()

		inserted, err := db.Collection("users").InsertOne(ctx, user)
		if mongo.IsDuplicateKeyError(err) {
			respondError(c, http.StatusConflict, "an account with this email already exists")
			return
		}
		if err != nil {
			logHandlerError(c, "Signup", err)
			respondError(c, http.StatusInternalServerError, "could not create account")
			return
		}
		user.ID = inserted.InsertedID.(primitive.ObjectID)

		token, err := issueToken("userId", user.ID)
		if err != nil {
			logHandlerError(c, "Signup", err)
			respondError(c, http.StatusInternalServerError, "could not create account")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user": user})
	}
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "Login")

		var input loginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}

		ctx, cancel := dbContext()
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{
			"email": strings.ToLower(strings.TrimSpace(input.Email)),
		}).Decode(&user)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if err != nil {
			logHandlerError(c, "Login", err)
			respondError(c, http.StatusInternalServerError, "could not sign in")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
			respondError(c, http.StatusUnauthorized, "invalid email or password")
			return
		}

		token, err := issueToken("userId", user.ID)
		if err != nil {
			logHandlerError(c, "Login", err)
			respondError(c, http.StatusInternalServerError, "could not sign in")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": user})
	}
}

// Me returns the authenticated user's profile.
func Me(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, "Me")

		ctx, cancel := dbContext()
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"_id": middleware.UserID(c)}).Decode(&user)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondError(c, http.StatusNotFound, "account not found")
			return
		}
		if err != nil {
			logHandlerError(c, "Me", err)
			respondError(c, http.StatusInternalServerError, "could not load profile")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
	}
}
