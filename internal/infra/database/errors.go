package database

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
)

// TranslateError maps a database error to an HTTP status and an Arabic
// message for the client.
func TranslateError(err error) (int, string) {
	if errors.Is(err, sql.ErrNoRows) || isNotFound(err) {
		return http.StatusNotFound, "السجل المطلوب غير موجود"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return http.StatusConflict, "هذه القيمة مستخدمة بالفعل"
		case pgForeignKeyViolation:
			return http.StatusBadRequest, "السجل المرتبط غير موجود"
		case pgNotNullViolation:
			return http.StatusBadRequest, "يرجى تعبئة جميع الحقول المطلوبة"
		case pgCheckViolation:
			return http.StatusBadRequest, "القيمة المدخلة غير مسموح بها"
		case pgInvalidText:
			return http.StatusBadRequest, "صيغة البيانات غير صحيحة"
		}
	}

	return http.StatusInternalServerError, "حدث خطأ في الخادم، يرجى المحاولة لاحقاً"
}

func isNotFound(err error) bool {
	for _, target := range []error{
		entity.ErrLeadNotFound, entity.ErrClientNotFound, entity.ErrUserNotFound,
		entity.ErrPaymentNotFound, entity.ErrInvoiceNotFound,
		entity.ErrSessionNotFound, entity.ErrContractNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
