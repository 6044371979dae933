// Package domain 支付领域模型：银行卡校验与确定性审批规则
package domain

import (
	"strconv"
	"time"
	"unicode"
)

// Card 支付卡信息
type Card struct {
	Number string
	Month  string
	Year   string
	Code   string
	Name   string
}

// Validate 校验卡字段格式与有效期
func (c Card) Validate(now time.Time) error {
	if len(c.Number) < 16 || !allDigits(c.Number) {
		return ErrInvalidCardNumber
	}

	month, err := strconv.Atoi(c.Month)
	if err != nil || month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	year, err := strconv.Atoi(c.Year)
	if err != nil || year < 23 || year > 99 {
		return ErrInvalidYear
	}

	if len(c.Code) != 3 || !allDigits(c.Code) {
		return ErrInvalidCode
	}
	if c.Name == "" || !alphabeticWithSpaces(c.Name) {
		return ErrInvalidName
	}

	// 两位年份，比较到月
	if year < now.Year()%100 || (year == now.Year()%100 && month < int(now.Month())) {
		return ErrCardExpired
	}
	return nil
}

// Approved 审批规则：卡号全数字、数值为偶数且不以 0 结尾则通过
func (c Card) Approved() bool {
	if len(c.Number) == 0 || !allDigits(c.Number) {
		return false
	}
	last := c.Number[len(c.Number)-1]
	return last != '0' && (last-'0')%2 == 0
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

func alphabeticWithSpaces(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}
