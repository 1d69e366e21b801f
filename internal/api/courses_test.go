package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/types"
)

func Test_createCourse(t *testing.T) {
	teacherId := primitive.NewObjectID()
	mockCourse := database.Course{
		Id:        primitive.NewObjectID(),
		Name:      "Distributed Systems",
		TeacherId: teacherId,
	}

	t.Run("teacher becomes the owner by default", func(t *testing.T) {
		mockRepo := &database.MockStudiumRepository{}
		defer mockRepo.AssertExpectations(t)

		mockRepo.On("CreateCourse", mock.Anything, mock.MatchedBy(func(params database.CreateCourseParams) bool {
			return params.Name == mockCourse.Name && params.TeacherId == teacherId.Hex()
		})).Return(mockCourse, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/courses", jsonBody(t, CreateCourseRequest{Name: mockCourse.Name}))
		req = withSession(req, teacherId.Hex(), map[string]int{"Teacher": database.RoleTeacher})
		app.createCourse(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp types.Course
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, mockCourse.Id.Hex(), resp.Id)
		assert.Equal(t, teacherId.Hex(), resp.TeacherId)
	})

	t.Run("missing name", func(t *testing.T) {
		app := newTestApp(t, &database.MockStudiumRepository{})

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/courses", jsonBody(t, CreateCourseRequest{}))
		req = withSession(req, teacherId.Hex(), map[string]int{"Teacher": database.RoleTeacher})
		app.createCourse(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func Test_listCourses(t *testing.T) {
	userId := primitive.NewObjectID()
	courses := []database.Course{
		{Id: primitive.NewObjectID(), Name: "Algorithms", TeacherId: primitive.NewObjectID()},
		{Id: primitive.NewObjectID(), Name: "Databases", TeacherId: primitive.NewObjectID()},
	}

	tcases := []struct {
		name         string
		scope        string
		roles        map[string]int
		mockMethod   string
		expectedCode int
	}{
		{
			name:         "default scope lists member courses",
			scope:        "",
			roles:        map[string]int{"User": database.RoleUser},
			mockMethod:   "ListCoursesForMember",
			expectedCode: http.StatusOK,
		},
		{
			name:         "teaching scope",
			scope:        "teaching",
			roles:        map[string]int{"Teacher": database.RoleTeacher},
			mockMethod:   "ListCoursesForTeacher",
			expectedCode: http.StatusOK,
		},
		{
			name:         "available scope",
			scope:        "available",
			roles:        map[string]int{"User": database.RoleUser},
			mockMethod:   "ListCoursesExcludingMember",
			expectedCode: http.StatusOK,
		},
		{
			name:         "all scope requires an elevated role",
			scope:        "all",
			roles:        map[string]int{"User": database.RoleUser},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "all scope for admins",
			scope:        "all",
			roles:        map[string]int{"Admin": database.RoleAdmin},
			mockMethod:   "ListCourses",
			expectedCode: http.StatusOK,
		},
		{
			name:         "unknown scope",
			scope:        "bogus",
			roles:        map[string]int{"User": database.RoleUser},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &database.MockStudiumRepository{}
			defer mockRepo.AssertExpectations(t)

			switch tc.mockMethod {
			case "ListCourses":
				mockRepo.On(tc.mockMethod, mock.Anything).Return(courses, nil).Once()
			case "":
			default:
				mockRepo.On(tc.mockMethod, mock.Anything, userId.Hex()).Return(courses, nil).Once()
			}

			app := newTestApp(t, mockRepo)

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/courses?scope="+tc.scope, nil)
			req = withSession(req, userId.Hex(), tc.roles)
			app.listCourses(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode == http.StatusOK {
				var resp []types.Course
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Len(t, resp, len(courses))
			}
		})
	}
}

func Test_getCourse(t *testing.T) {
	mockCourse := database.Course{
		Id:        primitive.NewObjectID(),
		Name:      "Algorithms",
		TeacherId: primitive.NewObjectID(),
		Events: []database.Event{{
			Id:     primitive.NewObjectID(),
			Title:  "Lecture 1",
			InCall: []primitive.ObjectID{primitive.NewObjectID()},
		}},
	}

	t.Run("found", func(t *testing.T) {
		mockRepo := &database.MockStudiumRepository{}
		defer mockRepo.AssertExpectations(t)

		mockRepo.On("GetCourseById", mock.Anything, mockCourse.Id.Hex()).Return(mockCourse, nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/courses/"+mockCourse.Id.Hex(), nil)
		req.SetPathValue("id", mockCourse.Id.Hex())
		app.getCourse(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp types.Course
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, mockCourse.Name, resp.Name)
		require.Len(t, resp.Events, 1)
		assert.Len(t, resp.Events[0].InCall, 1, "expected the call roster to be exposed")
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := &database.MockStudiumRepository{}
		defer mockRepo.AssertExpectations(t)

		mockRepo.On("GetCourseById", mock.Anything, "missing").Return(database.Course{}, database.ErrNotFound).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/courses/missing", nil)
		req.SetPathValue("id", "missing")
		app.getCourse(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func Test_courseMembers(t *testing.T) {
	courseId := primitive.NewObjectID().Hex()
	userId := primitive.NewObjectID().Hex()

	t.Run("add member", func(t *testing.T) {
		mockRepo := &database.MockStudiumRepository{}
		defer mockRepo.AssertExpectations(t)

		mockRepo.On("AddCourseMember", mock.Anything, courseId, userId).Return(nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/courses/"+courseId+"/members", jsonBody(t, CourseMemberRequest{UserId: userId}))
		req.SetPathValue("id", courseId)
		app.addCourseMember(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("remove member", func(t *testing.T) {
		mockRepo := &database.MockStudiumRepository{}
		defer mockRepo.AssertExpectations(t)

		mockRepo.On("RemoveCourseMember", mock.Anything, courseId, userId).Return(nil).Once()

		app := newTestApp(t, mockRepo)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/api/courses/"+courseId+"/members/"+userId, nil)
		req.SetPathValue("id", courseId)
		req.SetPathValue("userId", userId)
		app.removeCourseMember(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
