package models

import (
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
)

// CategoryModel maps s_categories
type CategoryModel struct {
	ID              int64   `gorm:"column:id;primaryKey"`
	ParentID        *int64  `gorm:"column:parent"`
	Path            *string `gorm:"column:path"`
	Name            string  `gorm:"column:description"`
	Position        int     `gorm:"column:position"`
	Blog            bool    `gorm:"column:blog"`
	MetaKeywords    string  `gorm:"column:metakeywords"`
	MetaDescription string  `gorm:"column:metadescription"`
	CMSHeadline     string  `gorm:"column:cmsheadline"`
	CMSText         string  `gorm:"column:cmstext"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "s_categories"
}

// ToDomain converts the row to a category node
func (m *CategoryModel) ToDomain() integration.CategoryNode {
	node := integration.CategoryNode{
		ID:              m.ID,
		Name:            m.Name,
		Blog:            m.Blog,
		MetaDescription: m.MetaDescription,
		MetaKeywords:    m.MetaKeywords,
		MetaTitle:       m.CMSHeadline,
		Text:            m.CMSText,
		Position:        m.Position,
	}
	if m.ParentID != nil {
		node.ParentID = *m.ParentID
	}
	if m.Path != nil {
		node.AncestorIDs = integration.ParseCategoryPath(*m.Path)
	}
	return node
}

// ShopModel maps s_core_shops
type ShopModel struct {
	ID         int64  `gorm:"column:id;primaryKey"`
	Name       string `gorm:"column:name"`
	CategoryID int64  `gorm:"column:category_id"`
	LocaleID   int64  `gorm:"column:locale_id"`
	Active     bool   `gorm:"column:active"`
	Default    bool   `gorm:"column:default"`
}

// TableName returns the table name for GORM
func (ShopModel) TableName() string {
	return "s_core_shops"
}

// LocaleModel maps s_core_locales
type LocaleModel struct {
	ID     int64  `gorm:"column:id;primaryKey"`
	Locale string `gorm:"column:locale"`
}

// TableName returns the table name for GORM
func (LocaleModel) TableName() string {
	return "s_core_locales"
}

// ConfiguratorGroupModel maps s_article_configurator_groups
type ConfiguratorGroupModel struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name"`
	Description string `gorm:"column:description"`
	Position    int    `gorm:"column:position"`
}

// TableName returns the table name for GORM
func (ConfiguratorGroupModel) TableName() string {
	return "s_article_configurator_groups"
}

// ConfiguratorOptionModel maps s_article_configurator_options
type ConfiguratorOptionModel struct {
	ID       int64  `gorm:"column:id;primaryKey"`
	GroupID  int64  `gorm:"column:group_id"`
	Name     string `gorm:"column:name"`
	Position int    `gorm:"column:position"`
}

// TableName returns the table name for GORM
func (ConfiguratorOptionModel) TableName() string {
	return "s_article_configurator_options"
}
