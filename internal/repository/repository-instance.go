package repository

import "access_service/internal/database/mongo"

type Repositories struct {
	AccessRepository       *AccessRepository
	ComponentRepository    *ComponentRepository
	OrganizationRepository *OrganizationRepository
	RedisRepository        *RedisRepo
	RoleRepository         *RoleRepository
	SidebarRepository      *SidebarRepository
}

var Repositories_instance = &Repositories{
	AccessRepository:       NewAccessRepository(mongo.Mongo_Database),
	ComponentRepository:    NewComponentRepository(mongo.Mongo_Database),
	OrganizationRepository: NewOrganizationRepository(mongo.Mongo_Database),
	RedisRepository:        NewRedisRepo(),
	RoleRepository:         NewRoleRepository(mongo.Mongo_Database),
	SidebarRepository:      NewSidebarRepository(mongo.Mongo_Database),
}
