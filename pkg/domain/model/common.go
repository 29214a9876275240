/*
 * @Description: 通用的分页结构
 * @Author: 安知鱼
 * @Date: 2025-07-12 17:41:31
 * @LastEditTime: 2026-01-14 11:33:02
 * @LastEditors: 安知鱼
 */
package model

import "github.com/anzhiyu-c/anheyu-attachment/pkg/constant"

// PageQuery 是 1 起始的分页参数
type PageQuery struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"pageSize" form:"pageSize"`
}

// Normalize 补齐默认值并限制分页大小上限
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = constant.DefaultPageSize
	}
	if q.PageSize > constant.MaxPageSize {
		q.PageSize = constant.MaxPageSize
	}
	return q
}

// Offset 返回当前页的偏移量
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// ListResult 是列表接口统一返回的分页结果
type ListResult[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}
