package domain

import "errors"

var (
	// ErrInvalidCardNumber 卡号须为不少于 16 位的数字
	ErrInvalidCardNumber = errors.New("card number must be at least 16 digits")
	// ErrInvalidMonth 月份须在 1 到 12 之间
	ErrInvalidMonth = errors.New("card month must be between 1 and 12")
	// ErrInvalidYear 年份须为 23 到 99 的两位数
	ErrInvalidYear = errors.New("card year must be between 23 and 99")
	// ErrInvalidCode 安全码须为 3 位数字
	ErrInvalidCode = errors.New("card code must be 3 digits")
	// ErrInvalidName 持卡人姓名须为字母
	ErrInvalidName = errors.New("card holder name must be alphabetic")
	// ErrCardExpired 卡已过期
	ErrCardExpired = errors.New("card expired")
	// ErrPaymentDeclined 审批未通过
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrQueueFull 支付队列已满
	ErrQueueFull = errors.New("payment queue full")
)
