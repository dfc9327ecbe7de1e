package identity

import "errors"

var (
	// ErrIdentityNotFound はアイデンティティが存在しない場合に返却されます。
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrNameAlreadyExists は名前重複時に返却されます。
	ErrNameAlreadyExists = errors.New("identity name already exists")
	// ErrInvalidName は名前が不正な場合に返却されます。
	ErrInvalidName = errors.New("invalid identity name")
	// ErrInvalidRole は役割が不正な場合に返却されます。
	ErrInvalidRole = errors.New("invalid identity role")
	// ErrInvalidID はIDが不正な場合に返却されます。
	ErrInvalidID = errors.New("invalid identity id")
)
