package jwtPkg

import (
	"MediVoice/internal/entity"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const DeviceLocalsKey = "device"

func Sign(Data map[string]interface{}, ExpiredAt time.Duration) (string, int64, error) {
	expiredAt := time.Now().Add(ExpiredAt).Unix()

	JWTSecretKey := os.Getenv("JWT_ACCESS_TOKEN_SECRET")
	if JWTSecretKey == "" {
		return "", 0, fmt.Errorf("JWT_ACCESS_TOKEN_SECRET not set")
	}

	claims := jwt.MapClaims{}
	claims["exp"] = expiredAt
	claims["authorization"] = true

	for i, v := range Data {
		claims[i] = v
	}

	logrus.WithField("claims", claims).Debug("Creating token with claims")

	to := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := to.SignedString([]byte(JWTSecretKey))
	if err != nil {
		logrus.WithError(err).Error("Failed to sign token")
		return "", 0, err
	}

	return accessToken, expiredAt, nil
}

// VerifyTokenHeader checks the bearer token of the request. Websocket
// clients that cannot set headers may pass it as access_token instead.
func VerifyTokenHeader(c *fiber.Ctx, secretEnvKey string) (*jwt.Token, error) {
	log := logrus.WithField("func", "VerifyTokenHeader")

	header := c.Get("Authorization")
	if header == "" {
		if query := c.Query("access_token"); query != "" {
			return VerifyToken(query, secretEnvKey)
		}
		log.Error("Empty Authorization header")
		return nil, errors.New("empty Authorization header")
	}

	parts := strings.Split(header, "Bearer ")
	if len(parts) != 2 {
		log.WithField("header_parts", len(parts)).Error("Invalid Authorization format")
		return nil, errors.New("invalid Authorization format")
	}

	accessToken := strings.TrimSpace(parts[1])
	if accessToken == "" {
		log.Error("Empty token after Bearer")
		return nil, errors.New("empty token")
	}

	log.Debug("Token format valid, attempting to parse")
	return VerifyToken(accessToken, secretEnvKey)
}

func VerifyToken(accessToken, secretEnvKey string) (*jwt.Token, error) {
	log := logrus.WithField("func", "VerifyToken")

	JWTSecretKey := os.Getenv(secretEnvKey)
	if JWTSecretKey == "" {
		log.Error("JWT_ACCESS_TOKEN_SECRET environment variable not set")
		return nil, errors.New("JWT secret not configured")
	}

	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.WithField("method", token.Header["alg"]).Error("Unexpected signing method")
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(JWTSecretKey), nil
	})

	if err != nil {
		log.WithError(err).Error("Failed to parse JWT token")
		return nil, err
	}

	log.Debug("Token successfully verified")
	return token, nil
}

// DeviceFromClaims requires the id and user_id claims; name is optional.
func DeviceFromClaims(claims jwt.MapClaims) (entity.DeviceLoginData, error) {
	id, _ := claims["id"].(string)
	userID, _ := claims["user_id"].(string)
	if id == "" || userID == "" {
		return entity.DeviceLoginData{}, errors.New("token claims are missing required fields")
	}

	name, _ := claims["name"].(string)
	return entity.DeviceLoginData{
		ID:     id,
		UserID: userID,
		Name:   name,
	}, nil
}

func GetDeviceLoginData(c *fiber.Ctx) (entity.DeviceLoginData, error) {
	deviceData := c.Locals(DeviceLocalsKey)

	device, ok := deviceData.(entity.DeviceLoginData)
	if !ok {
		return entity.DeviceLoginData{}, fiber.ErrUnauthorized
	}

	return device, nil
}
