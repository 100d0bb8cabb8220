package serverutils

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const ownerIdKey = "owner_id"

// JwtMiddleware accepts HMAC-signed bearer tokens carrying a numeric owner_id claim.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token", false))
		}
		ownerId, err := ParseOwnerToken(secret, authHeader[7:])
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token", false))
		}

		ctx.Locals(ownerIdKey, ownerId)
		return ctx.Next()
	}
}

// ParseOwnerToken verifies an HMAC-signed token and returns its owner_id claim.
func ParseOwnerToken(secret, tokenStr string) (int64, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errors.New("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("unexpected claims type")
	}
	return parseOwnerId(claims[ownerIdKey])
}

func parseOwnerId(v interface{}) (int64, error) {
	switch id := v.(type) {
	case float64:
		if id != float64(int64(id)) {
			return 0, fmt.Errorf("owner_id %v is not an integer", id)
		}
		return int64(id), nil
	case string:
		return strconv.ParseInt(id, 10, 64)
	default:
		return 0, fmt.Errorf("owner_id has type %T", v)
	}
}

// OwnerId returns the owner set by JwtMiddleware.
func OwnerId(ctx *fiber.Ctx) int64 {
	id, _ := ctx.Locals(ownerIdKey).(int64)
	return id
}
