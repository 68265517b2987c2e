package httpapi

import (
	"context"

	"pantrypilot/coordinator"
	"pantrypilot/recipe"
	"pantrypilot/session"
)

type ingredientDTO struct {
	IngredientName string  `json:"ingredientName"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	ImageURL       string  `json:"imageUrl,omitempty"`
}

type recipeDTO struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Instructions string          `json:"instructions"`
	PrepTime     int             `json:"prepTime"`
	Origin       recipe.Origin   `json:"origin"`
	Ingredients  []ingredientDTO `json:"ingredients"`
}

type pageResponse struct {
	Token                string        `json:"token"`
	Recipes              []recipeDTO   `json:"recipes"`
	State                session.State `json:"state"`
	Message              string        `json:"message,omitempty"`
	GeneratedServedCount int           `json:"generatedServedCount"`
	RemainingQuota       int           `json:"remainingQuota"`
}

type matchRequest struct {
	Ingredients []recipe.PantryItem `json:"ingredients" validate:"dive"`
	MinPrepTime int                 `json:"minPrepTime" validate:"gte=0"`
	MaxPrepTime int                 `json:"maxPrepTime" validate:"gtefield=MinPrepTime"`
	BatchSize   int                 `json:"batchSize" validate:"gte=0"`
}

type pantryRequest struct {
	Ingredients []recipe.PantryItem `json:"ingredients" validate:"required,dive"`
}

type pantryResponse struct {
	Ingredients []ingredientDTO `json:"ingredients"`
}

func (s *Server) page(ctx context.Context, res coordinator.Result) pageResponse {
	out := pageResponse{
		Token:                res.Token,
		Recipes:              make([]recipeDTO, 0, len(res.Recipes)),
		State:                res.State,
		Message:              res.Message,
		GeneratedServedCount: res.GeneratedServed,
		RemainingQuota:       res.RemainingQuota,
	}
	for _, r := range res.Recipes {
		out.Recipes = append(out.Recipes, s.recipe(ctx, r))
	}
	return out
}

func (s *Server) recipe(ctx context.Context, r recipe.Recipe) recipeDTO {
	dto := recipeDTO{
		ID:           r.ID,
		Title:        r.Title,
		Instructions: r.Instructions,
		PrepTime:     r.PrepTimeMinutes,
		Origin:       r.Origin,
		Ingredients:  make([]ingredientDTO, 0, len(r.Ingredients)),
	}
	for _, ing := range r.Ingredients {
		dto.Ingredients = append(dto.Ingredients, ingredientDTO{
			IngredientName: ing.Name,
			Quantity:       ing.Quantity,
			Unit:           ing.Unit,
			ImageURL:       s.images.ImageURL(ctx, ing.Name),
		})
	}
	return dto
}

func (s *Server) pantryItems(ctx context.Context, items []recipe.PantryItem) pantryResponse {
	out := pantryResponse{Ingredients: make([]ingredientDTO, 0, len(items))}
	for _, it := range items {
		out.Ingredients = append(out.Ingredients, ingredientDTO{
			IngredientName: it.Name,
			Quantity:       it.Quantity,
			Unit:           it.Unit,
			ImageURL:       s.images.ImageURL(ctx, it.Name),
		})
	}
	return out
}
