package handlers

import "fastfeet/internal/domain"

func (r createRecipientRequest) toModel() domain.Recipient {
	return domain.Recipient{
		Name:       r.Name,
		Street:     r.Street,
		Number:     r.Number,
		Complement: r.Complement,
		State:      r.State,
		City:       r.City,
		ZipCode:    r.ZipCode,
	}
}

func (r updateRecipientRequest) toModel(id int64) domain.PartialRecipientUpdate {
	return domain.PartialRecipientUpdate{
		ID:         id,
		Name:       r.Name,
		Street:     r.Street,
		Number:     r.Number,
		Complement: r.Complement,
		State:      r.State,
		City:       r.City,
		ZipCode:    r.ZipCode,
	}
}

func recipientToResponse(r domain.Recipient) recipientDTO {
	return recipientDTO{
		ID:         r.ID,
		Name:       r.Name,
		Street:     r.Street,
		Number:     r.Number,
		Complement: r.Complement,
		State:      r.State,
		City:       r.City,
		ZipCode:    r.ZipCode,
	}
}

func recipientsToResponse(list []domain.Recipient) []recipientDTO {
	out := make([]recipientDTO, 0, len(list))
	for _, r := range list {
		out = append(out, recipientToResponse(r))
	}
	return out
}

func fileToResponse(f *domain.File, url URLFunc) *fileDTO {
	if f == nil {
		return nil
	}
	dto := &fileDTO{ID: f.ID, Name: f.Name, Path: f.Path, URL: f.URL}
	if dto.URL == "" && url != nil {
		dto.URL = url(f.Path)
	}
	return dto
}

func (r createDeliverymanRequest) toModel() domain.Deliveryman {
	return domain.Deliveryman{Name: r.Name, Email: r.Email, AvatarID: r.AvatarID}
}

func (r updateDeliverymanRequest) toModel(id int64) domain.PartialDeliverymanUpdate {
	return domain.PartialDeliverymanUpdate{ID: id, Name: r.Name, Email: r.Email, AvatarID: r.AvatarID}
}

func deliverymanToResponse(dm domain.Deliveryman, url URLFunc) deliverymanDTO {
	return deliverymanDTO{
		ID:       dm.ID,
		Name:     dm.Name,
		Email:    dm.Email,
		AvatarID: dm.AvatarID,
		Avatar:   fileToResponse(dm.Avatar, url),
	}
}

func deliverymenToResponse(list []domain.Deliveryman, url URLFunc) []deliverymanDTO {
	out := make([]deliverymanDTO, 0, len(list))
	for _, dm := range list {
		out = append(out, deliverymanToResponse(dm, url))
	}
	return out
}

func (r updateDeliveryRequest) toModel(id int64) domain.DeliveryUpdate {
	return domain.DeliveryUpdate{
		ID:            id,
		Product:       r.Product,
		RecipientID:   r.RecipientID,
		DeliverymanID: r.DeliverymanID,
		SignatureID:   r.SignatureID,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		CanceledAt:    r.CanceledAt,
	}
}

func deliveryToResponse(d domain.Delivery) deliveryDTO {
	return deliveryDTO{
		ID:            d.ID,
		Product:       d.Product,
		RecipientID:   d.RecipientID,
		DeliverymanID: d.DeliverymanID,
		SignatureID:   d.SignatureID,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
		CanceledAt:    d.CanceledAt,
		Status:        string(d.State()),
	}
}

func detailsToResponse(d domain.DeliveryDetails, url URLFunc) deliveryDTO {
	dto := deliveryToResponse(d.Delivery)
	r := recipientToResponse(d.Recipient)
	dm := deliverymanToResponse(d.Deliveryman, url)
	dto.Recipient = &r
	dto.Deliveryman = &dm
	dto.Signature = fileToResponse(d.Signature, url)
	return dto
}

func detailsListToResponse(list []domain.DeliveryDetails, url URLFunc) []deliveryDTO {
	out := make([]deliveryDTO, 0, len(list))
	for _, d := range list {
		out = append(out, detailsToResponse(d, url))
	}
	return out
}

func problemToResponse(p domain.DeliveryProblem) problemDTO {
	return problemDTO{ID: p.ID, DeliveryID: p.DeliveryID, Description: p.Description, CreatedAt: p.CreatedAt}
}

func problemsToResponse(list []domain.DeliveryProblem) []problemDTO {
	out := make([]problemDTO, 0, len(list))
	for _, p := range list {
		out = append(out, problemToResponse(p))
	}
	return out
}

func problemDetailsToResponse(list []domain.ProblemDetails, url URLFunc) []problemDTO {
	out := make([]problemDTO, 0, len(list))
	for _, p := range list {
		dto := problemToResponse(p.DeliveryProblem)
		d := detailsToResponse(p.Delivery, url)
		dto.Delivery = &d
		out = append(out, dto)
	}
	return out
}

func userToResponse(u domain.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}
