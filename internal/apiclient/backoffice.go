package apiclient

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

type Reservation struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	PartySize int       `json:"party_size"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Schedule struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	StartDate string    `json:"start_date"`
	EndDate   *string   `json:"end_date"`
	Moment    string    `json:"moment"`
	CreatedAt time.Time `json:"created_at"`
}

type ScheduleInput struct {
	Type      string `json:"type"`
	Mode      string `json:"mode"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
	Moment    string `json:"moment,omitempty"`
}

func (c *Client) ListReservations(ctx context.Context) ([]Reservation, error) {
	var out []Reservation
	if err := c.do(ctx, "list reservations", http.MethodGet, reservationsPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateReservation(ctx context.Context, id int64, status string) (*Reservation, error) {
	var out Reservation
	path := reservationsPath + strconv.FormatInt(id, 10) + "/"
	if err := c.do(ctx, "update reservation", http.MethodPatch, path, map[string]string{"status": status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReservation(ctx context.Context, id int64) error {
	path := reservationsPath + strconv.FormatInt(id, 10) + "/"
	return c.do(ctx, "delete reservation", http.MethodDelete, path, nil, nil)
}

func (c *Client) ListSchedules(ctx context.Context) ([]Schedule, error) {
	var out []Schedule
	if err := c.do(ctx, "list schedules", http.MethodGet, schedulesPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSchedule(ctx context.Context, in ScheduleInput) (*Schedule, error) {
	var out Schedule
	if err := c.do(ctx, "create schedule", http.MethodPost, schedulesPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSchedule(ctx context.Context, id int64) error {
	path := schedulesPath + strconv.FormatInt(id, 10) + "/"
	return c.do(ctx, "delete schedule", http.MethodDelete, path, nil, nil)
}
