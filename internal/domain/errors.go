package domain

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomNameTaken = errors.New("room name already taken")
	ErrRoomFull      = errors.New("room is full")
	ErrWrongPassword = errors.New("wrong room password")

	// Ошибки валидации создания комнаты
	ErrEmptyRoomName        = errors.New("room name is required")
	ErrPasswordRequired     = errors.New("password is required for private rooms")
	ErrMaxParticipantsRange = errors.New("max participants must be between 1 and 50")
)
