package serverutils

import (
	"jobmatch-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetPrincipal reads the caller set by JwtMiddleware.
func GetPrincipal(ctx *fiber.Ctx) (entity.Principal, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return entity.Principal{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid user id in token")
	}
	role, _ := ctx.Locals("role").(string)
	return entity.Principal{UserId: userId, Role: role}, nil
}
