package server

import (
	"strconv"
	"strings"

	"homestead/internal/models"
	"homestead/internal/service"

	"github.com/gofiber/fiber/v2"
)

type listingPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Location    string  `json:"location"`
	Bedrooms    int     `json:"bedrooms"`
	Bathrooms   float64 `json:"bathrooms"`
	Category    string  `json:"category"`
	MainPhoto   string  `json:"main_photo"`
	Photo1      string  `json:"photo_1"`
	Photo2      string  `json:"photo_2"`
	Photo3      string  `json:"photo_3"`
	IsPublished bool    `json:"is_published"`
}

// GetMyListings handles GET /api/listings/manage
// With ?slug= it returns that one owned listing; without it, all of
// the realtor's listings, drafts included.
// @Summary List or fetch the realtor's own listings
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param slug query string false "Listing slug"
// @Success 200 {object} object{listings=[]models.Listing}
// @Failure 404 {object} object{error=string}
// @Router /listings/manage [get]
func (s *Server) GetMyListings(c *fiber.Ctx) error {
	realtorID := currentAccountID(c)

	if slug := c.Query("slug"); slug != "" {
		listing, err := s.listingService.GetOwned(c.Context(), realtorID, slug)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"listing": listing})
	}

	listings, err := s.listingService.ListOwned(c.Context(), realtorID)
	if err != nil {
		return fail(c, err)
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return c.JSON(fiber.Map{"listings": listings})
}

// CreateListing handles POST /api/listings/manage
// Accepts either JSON with photo keys, or multipart form data with
// photo files which are re-encoded and stored in the blob store.
// @Summary Create a listing
// @Tags listings
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} object{message=string,listing=models.Listing}
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Router /listings/manage [post]
func (s *Server) CreateListing(c *fiber.Ctx) error {
	in, stored, err := s.parseCreateListing(c)
	if err != nil {
		s.discardPhotos(c.Context(), stored)
		return fail(c, err)
	}
	in.RealtorID = currentAccountID(c)

	listing, err := s.listingService.Create(c.Context(), *in)
	if err != nil {
		s.discardPhotos(c.Context(), stored)
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Listing created successfully",
		"listing": listing,
	})
}

// parseCreateListing also reports the blob keys it stored for a
// multipart body so the caller can discard them when the create fails.
func (s *Server) parseCreateListing(c *fiber.Ctx) (*service.CreateListingInput, []string, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return s.parseMultipartListing(c)
	}

	var req listingPayload
	if err := c.BodyParser(&req); err != nil {
		return nil, nil, models.NewValidationError("Invalid request body")
	}
	return &service.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Category:    req.Category,
		MainPhoto:   req.MainPhoto,
		Photo1:      req.Photo1,
		Photo2:      req.Photo2,
		Photo3:      req.Photo3,
		IsPublished: req.IsPublished,
	}, nil, nil
}

func (s *Server) parseMultipartListing(c *fiber.Ctx) (*service.CreateListingInput, []string, error) {
	in := &service.CreateListingInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Location:    c.FormValue("location"),
		Category:    c.FormValue("category"),
	}

	if v := c.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, models.NewValidationError("Invalid price")
		}
		in.Price = price
	}
	if v := c.FormValue("bedrooms"); v != "" {
		bedrooms, err := strconv.Atoi(v)
		if err != nil {
			return nil, nil, models.NewValidationError("Invalid bedrooms")
		}
		in.Bedrooms = bedrooms
	}
	if v := c.FormValue("bathrooms"); v != "" {
		bathrooms, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, models.NewValidationError("Invalid bathrooms")
		}
		in.Bathrooms = bathrooms
	}
	if v := c.FormValue("is_published"); v != "" {
		published, err := strconv.ParseBool(v)
		if err != nil {
			return nil, nil, models.NewValidationError("Invalid is_published")
		}
		in.IsPublished = published
	}

	fields := []struct {
		form string
		dest *string
	}{
		{"main_photo", &in.MainPhoto},
		{"photo_1", &in.Photo1},
		{"photo_2", &in.Photo2},
		{"photo_3", &in.Photo3},
	}
	var stored []string
	for _, f := range fields {
		file, err := c.FormFile(f.form)
		if err != nil {
			continue // field absent
		}
		key, err := s.storePhoto(c.Context(), file)
		if err != nil {
			return nil, stored, err
		}
		stored = append(stored, key)
		*f.dest = key
	}
	return in, stored, nil
}

// ReplaceListing handles PUT /api/listings/manage. The slug in the
// body selects the listing; slug and owner themselves never change.
// @Summary Replace a listing
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=string,listing=models.Listing}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /listings/manage [put]
func (s *Server) ReplaceListing(c *fiber.Ctx) error {
	var req struct {
		Slug string `json:"slug"`
		listingPayload
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Slug is required"))
	}

	in := service.UpdateListingInput{
		Title:       &req.Title,
		Description: &req.Description,
		Price:       &req.Price,
		Location:    &req.Location,
		Bedrooms:    &req.Bedrooms,
		Bathrooms:   &req.Bathrooms,
		Category:    &req.Category,
		MainPhoto:   &req.MainPhoto,
		Photo1:      &req.Photo1,
		Photo2:      &req.Photo2,
		Photo3:      &req.Photo3,
		IsPublished: &req.IsPublished,
	}
	listing, err := s.listingService.Update(c.Context(), currentAccountID(c), req.Slug, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": "Listing updated successfully",
		"listing": listing,
	})
}

// PatchListing handles PATCH /api/listings/manage. Only the fields
// present in the body are applied. Multipart bodies may carry
// replacement photo files, which are stored before the update.
// @Summary Partially update a listing
// @Tags listings
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=string,listing=models.Listing}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /listings/manage [patch]
func (s *Server) PatchListing(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return s.patchListingMultipart(c)
	}

	var req struct {
		Slug        string   `json:"slug"`
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Location    *string  `json:"location"`
		Bedrooms    *int     `json:"bedrooms"`
		Bathrooms   *float64 `json:"bathrooms"`
		Category    *string  `json:"category"`
		MainPhoto   *string  `json:"main_photo"`
		Photo1      *string  `json:"photo_1"`
		Photo2      *string  `json:"photo_2"`
		Photo3      *string  `json:"photo_3"`
		IsPublished *bool    `json:"is_published"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Slug is required"))
	}

	in := service.UpdateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Category:    req.Category,
		MainPhoto:   req.MainPhoto,
		Photo1:      req.Photo1,
		Photo2:      req.Photo2,
		Photo3:      req.Photo3,
		IsPublished: req.IsPublished,
	}
	listing, err := s.listingService.Update(c.Context(), currentAccountID(c), req.Slug, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": "Listing updated successfully",
		"listing": listing,
	})
}

func (s *Server) patchListingMultipart(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	value := func(name string) (string, bool) {
		vals, ok := form.Value[name]
		if !ok || len(vals) == 0 {
			return "", false
		}
		return vals[0], true
	}

	slug, _ := value("slug")
	if slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Slug is required"))
	}

	var in service.UpdateListingInput
	if v, ok := value("title"); ok {
		in.Title = &v
	}
	if v, ok := value("description"); ok {
		in.Description = &v
	}
	if v, ok := value("location"); ok {
		in.Location = &v
	}
	if v, ok := value("category"); ok {
		in.Category = &v
	}
	if v, ok := value("price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fail(c, models.NewValidationError("Invalid price"))
		}
		in.Price = &price
	}
	if v, ok := value("bedrooms"); ok {
		bedrooms, err := strconv.Atoi(v)
		if err != nil {
			return fail(c, models.NewValidationError("Invalid bedrooms"))
		}
		in.Bedrooms = &bedrooms
	}
	if v, ok := value("bathrooms"); ok {
		bathrooms, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fail(c, models.NewValidationError("Invalid bathrooms"))
		}
		in.Bathrooms = &bathrooms
	}
	if v, ok := value("is_published"); ok {
		published, err := strconv.ParseBool(v)
		if err != nil {
			return fail(c, models.NewValidationError("Invalid is_published"))
		}
		in.IsPublished = &published
	}

	photoFields := []struct {
		form string
		dest **string
	}{
		{"main_photo", &in.MainPhoto},
		{"photo_1", &in.Photo1},
		{"photo_2", &in.Photo2},
		{"photo_3", &in.Photo3},
	}
	var stored []string
	for _, f := range photoFields {
		file, err := c.FormFile(f.form)
		if err != nil {
			continue
		}
		key, err := s.storePhoto(c.Context(), file)
		if err != nil {
			s.discardPhotos(c.Context(), stored)
			return fail(c, err)
		}
		stored = append(stored, key)
		*f.dest = &key
	}

	listing, err := s.listingService.Update(c.Context(), currentAccountID(c), slug, in)
	if err != nil {
		s.discardPhotos(c.Context(), stored)
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": "Listing updated successfully",
		"listing": listing,
	})
}

// DeleteListing handles DELETE /api/listings/manage
// @Summary Delete a listing and its photos
// @Tags listings
// @Accept json
// @Security BearerAuth
// @Param request body object{slug=string} true "Listing slug"
// @Success 204
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /listings/manage [delete]
func (s *Server) DeleteListing(c *fiber.Ctx) error {
	var req struct {
		Slug string `json:"slug"`
	}
	if err := c.BodyParser(&req); err != nil || req.Slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Slug is required"))
	}

	if err := s.listingService.Delete(c.Context(), currentAccountID(c), req.Slug); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetListingDetail handles GET /api/listings/detail?slug=
// @Summary Get a published listing by slug
// @Tags listings
// @Produce json
// @Param slug query string true "Listing slug"
// @Success 200 {object} object{listing=models.Listing}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /listings/detail [get]
func (s *Server) GetListingDetail(c *fiber.Ctx) error {
	slug := c.Query("slug")
	if slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Slug parameter is required"))
	}

	listing, err := s.listingService.GetPublished(c.Context(), slug)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"listing": listing})
}

// GetPublishedListings handles GET /api/listings/public
// Zero published listings is reported as a 404, keeping the original
// API contract.
// @Summary List all published listings
// @Tags listings
// @Produce json
// @Success 200 {object} object{listings=[]models.Listing}
// @Failure 404 {object} object{error=string}
// @Router /listings/public [get]
func (s *Server) GetPublishedListings(c *fiber.Ctx) error {
	listings, err := s.listingService.ListPublished(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if len(listings) == 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("No published listings found in the database."))
	}
	return c.JSON(fiber.Map{"listings": listings})
}

// SearchListings handles GET /api/listings/search
// @Summary Search published listings
// @Tags listings
// @Produce json
// @Param search query string false "Free-text term"
// @Param max_price query number false "Price ceiling"
// @Param bedrooms query integer false "Minimum bedrooms"
// @Param bathrooms query number false "Minimum bathrooms"
// @Param location query string false "Location substring"
// @Param category query string false "Exact category"
// @Success 200 {object} object{count=int,results=[]models.Listing}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /listings/search [get]
func (s *Server) SearchListings(c *fiber.Ctx) error {
	results, err := s.listingService.Search(c.Context(), service.SearchInput{
		Search:    c.Query("search"),
		MaxPrice:  c.Query("max_price"),
		Bedrooms:  c.Query("bedrooms"),
		Bathrooms: c.Query("bathrooms"),
		Location:  c.Query("location"),
		Category:  c.Query("category"),
	})
	if err != nil {
		return fail(c, err)
	}
	if len(results) == 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("No listings found matching the criteria."))
	}
	return c.JSON(fiber.Map{
		"count":   len(results),
		"results": results,
	})
}
