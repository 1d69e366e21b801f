package database

import (
	"context"
	"errors"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// objectId parses a client-supplied hex id. A malformed id can never match
// a document, so it is reported as ErrNotFound.
func objectId(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func objectIds(ids []string) ([]primitive.ObjectID, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := objectId(id)
		if err != nil {
			return nil, err
		}
		oids = append(oids, oid)
	}
	return oids, nil
}

func wrapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

func (db *MongoStudiumRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	now := time.Now().UTC()
	user := User{
		Id:            primitive.NewObjectID(),
		Name:          params.Name,
		Surname:       params.Surname,
		StudentNumber: params.StudentNumber,
		Email:         params.Email,
		Roles:         params.Roles,
		PasswordHash:  params.PasswordHash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if user.Roles == nil {
		user.Roles = map[string]int{"User": RoleUser}
	}

	if _, err := db.users().InsertOne(ctx, user); err != nil {
		return User{}, wrapErr(err)
	}
	return user, nil
}

func (db *MongoStudiumRepository) UpdateUser(ctx context.Context, params UpdateUserParams) (User, error) {
	oid, err := objectId(params.UserId)
	if err != nil {
		return User{}, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if params.Name != "" {
		set["name"] = params.Name
	}
	if params.Surname != "" {
		set["surname"] = params.Surname
	}
	if params.Email != "" {
		set["email"] = params.Email
	}
	if params.PasswordHash != "" {
		set["password"] = params.PasswordHash
	}
	if params.Roles != nil {
		set["roles"] = params.Roles
	}
	if params.Picture != "" {
		set["picture"] = params.Picture
	}

	var user User
	err = db.users().FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	return user, wrapErr(err)
}

func (db *MongoStudiumRepository) findUser(ctx context.Context, filter bson.M) (User, error) {
	var user User
	err := db.users().FindOne(ctx, filter).Decode(&user)
	return user, wrapErr(err)
}

func (db *MongoStudiumRepository) GetUserById(ctx context.Context, userId string) (User, error) {
	oid, err := objectId(userId)
	if err != nil {
		return User{}, err
	}
	return db.findUser(ctx, bson.M{"_id": oid})
}

func (db *MongoStudiumRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return db.findUser(ctx, bson.M{"email": email})
}

func (db *MongoStudiumRepository) GetUserBySocket(ctx context.Context, socketId string) (User, error) {
	return db.findUser(ctx, bson.M{"socket": socketId})
}

func (db *MongoStudiumRepository) GetUserByStudentNumber(ctx context.Context, studentNumber string) (User, error) {
	return db.findUser(ctx, bson.M{"studentNumber": studentNumber})
}

func (db *MongoStudiumRepository) GetUserByResetToken(ctx context.Context, token string) (User, error) {
	return db.findUser(ctx, bson.M{"resetToken": token})
}

func (db *MongoStudiumRepository) GetUserByRefreshToken(ctx context.Context, token string) (User, error) {
	return db.findUser(ctx, bson.M{"refreshToken": token})
}

func (db *MongoStudiumRepository) updateUserById(ctx context.Context, userId string, update bson.M) error {
	oid, err := objectId(userId)
	if err != nil {
		return err
	}

	res, err := db.users().UpdateByID(ctx, oid, update)
	if err != nil {
		return wrapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *MongoStudiumRepository) SetUserSocket(ctx context.Context, userId, socketId string) error {
	return db.updateUserById(ctx, userId, bson.M{
		"$set": bson.M{"socket": socketId, "updatedAt": time.Now().UTC()},
	})
}

func (db *MongoStudiumRepository) ClearUserSocket(ctx context.Context, userId string) error {
	return db.updateUserById(ctx, userId, bson.M{
		"$unset": bson.M{"socket": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (db *MongoStudiumRepository) SetUserRefreshToken(ctx context.Context, userId, token string) error {
	return db.updateUserById(ctx, userId, bson.M{
		"$set": bson.M{"refreshToken": token, "updatedAt": time.Now().UTC()},
	})
}

func (db *MongoStudiumRepository) SetUserResetToken(ctx context.Context, userId, token string, expiresAt time.Time) error {
	return db.updateUserById(ctx, userId, bson.M{
		"$set": bson.M{
			"resetToken":          token,
			"resetTokenExpiresAt": expiresAt,
			"updatedAt":           time.Now().UTC(),
		},
	})
}

func (db *MongoStudiumRepository) SetUserPassword(ctx context.Context, userId, passwordHash string) error {
	return db.updateUserById(ctx, userId, bson.M{
		"$set":   bson.M{"password": passwordHash, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"resetToken": "", "resetTokenExpiresAt": ""},
	})
}

func (db *MongoStudiumRepository) SetUserPicture(ctx context.Context, userId, picture string) error {
	return db.updateUserById(ctx, userId, bson.M{
		"$set": bson.M{"picture": picture, "updatedAt": time.Now().UTC()},
	})
}

func (db *MongoStudiumRepository) SetUserRoles(ctx context.Context, userId string, roles map[string]int) error {
	return db.updateUserById(ctx, userId, bson.M{
		"$set": bson.M{"roles": roles, "updatedAt": time.Now().UTC()},
	})
}

func (db *MongoStudiumRepository) DeleteUser(ctx context.Context, userId string) error {
	oid, err := objectId(userId)
	if err != nil {
		return err
	}

	res, err := db.users().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return wrapErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *MongoStudiumRepository) listUsers(ctx context.Context, filter bson.M) ([]User, error) {
	cur, err := db.users().Find(ctx, filter)
	if err != nil {
		return nil, wrapErr(err)
	}

	var users []User
	if err := cur.All(ctx, &users); err != nil {
		return nil, wrapErr(err)
	}
	return users, nil
}

func (db *MongoStudiumRepository) ListUsers(ctx context.Context) ([]User, error) {
	return db.listUsers(ctx, bson.M{"roles.Admin": bson.M{"$exists": false}})
}

func (db *MongoStudiumRepository) ListAllUsers(ctx context.Context) ([]User, error) {
	return db.listUsers(ctx, bson.M{})
}

func (db *MongoStudiumRepository) ListUsersWithRole(ctx context.Context, role string) ([]User, error) {
	return db.listUsers(ctx, bson.M{"roles." + role: bson.M{"$exists": true}})
}

func (db *MongoStudiumRepository) CreateCourse(ctx context.Context, params CreateCourseParams) (Course, error) {
	teacherId, err := objectId(params.TeacherId)
	if err != nil {
		return Course{}, err
	}

	now := time.Now().UTC()
	course := Course{
		Id:          primitive.NewObjectID(),
		Name:        params.Name,
		Description: params.Description,
		TeacherId:   teacherId,
		Members:     []primitive.ObjectID{},
		Pic:         params.Pic,
		Events:      []Event{},
		Files:       []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := db.courses().InsertOne(ctx, course); err != nil {
		return Course{}, wrapErr(err)
	}
	return course, nil
}

func (db *MongoStudiumRepository) UpdateCourse(ctx context.Context, params UpdateCourseParams) (Course, error) {
	oid, err := objectId(params.CourseId)
	if err != nil {
		return Course{}, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if params.Name != "" {
		set["name"] = params.Name
	}
	if params.Description != "" {
		set["description"] = params.Description
	}
	if params.Pic != "" {
		set["pic"] = params.Pic
	}
	if params.TeacherId != "" {
		teacherId, err := objectId(params.TeacherId)
		if err != nil {
			return Course{}, err
		}
		set["teacherId"] = teacherId
	}

	var course Course
	err = db.courses().FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&course)
	return course, wrapErr(err)
}

func (db *MongoStudiumRepository) GetCourseById(ctx context.Context, courseId string) (Course, error) {
	oid, err := objectId(courseId)
	if err != nil {
		return Course{}, err
	}

	var course Course
	err = db.courses().FindOne(ctx, bson.M{"_id": oid}).Decode(&course)
	return course, wrapErr(err)
}

// GetCourseByEventId locates the course owning the event with the given
// embedded id.
func (db *MongoStudiumRepository) GetCourseByEventId(ctx context.Context, eventId string) (Course, error) {
	oid, err := objectId(eventId)
	if err != nil {
		return Course{}, err
	}

	var course Course
	err = db.courses().FindOne(ctx, bson.M{"events._id": oid}).Decode(&course)
	return course, wrapErr(err)
}

func (db *MongoStudiumRepository) DeleteCourse(ctx context.Context, courseId string) error {
	oid, err := objectId(courseId)
	if err != nil {
		return err
	}

	res, err := db.courses().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return wrapErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *MongoStudiumRepository) listCourses(ctx context.Context, filter bson.M) ([]Course, error) {
	cur, err := db.courses().Find(ctx, filter)
	if err != nil {
		return nil, wrapErr(err)
	}

	var courses []Course
	if err := cur.All(ctx, &courses); err != nil {
		return nil, wrapErr(err)
	}
	return courses, nil
}

func (db *MongoStudiumRepository) ListCourses(ctx context.Context) ([]Course, error) {
	return db.listCourses(ctx, bson.M{})
}

func (db *MongoStudiumRepository) ListCoursesForMember(ctx context.Context, userId string) ([]Course, error) {
	oid, err := objectId(userId)
	if err != nil {
		return nil, err
	}
	return db.listCourses(ctx, bson.M{"members": oid})
}

func (db *MongoStudiumRepository) ListCoursesForTeacher(ctx context.Context, userId string) ([]Course, error) {
	oid, err := objectId(userId)
	if err != nil {
		return nil, err
	}
	return db.listCourses(ctx, bson.M{"teacherId": oid})
}

func (db *MongoStudiumRepository) ListCoursesExcludingMember(ctx context.Context, userId string) ([]Course, error) {
	oid, err := objectId(userId)
	if err != nil {
		return nil, err
	}
	return db.listCourses(ctx, bson.M{"members": bson.M{"$nin": bson.A{oid}}})
}

func (db *MongoStudiumRepository) updateCourseById(ctx context.Context, courseId string, update bson.M) error {
	oid, err := objectId(courseId)
	if err != nil {
		return err
	}

	res, err := db.courses().UpdateByID(ctx, oid, update)
	if err != nil {
		return wrapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *MongoStudiumRepository) AddCourseMember(ctx context.Context, courseId, userId string) error {
	userOid, err := objectId(userId)
	if err != nil {
		return err
	}
	return db.updateCourseById(ctx, courseId, bson.M{
		"$addToSet": bson.M{"members": userOid},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (db *MongoStudiumRepository) RemoveCourseMember(ctx context.Context, courseId, userId string) error {
	userOid, err := objectId(userId)
	if err != nil {
		return err
	}
	return db.updateCourseById(ctx, courseId, bson.M{
		"$pull": bson.M{"members": userOid},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (db *MongoStudiumRepository) AddUserToCourses(ctx context.Context, userId string, courseIds []string) error {
	userOid, err := objectId(userId)
	if err != nil {
		return err
	}
	courseOids, err := objectIds(courseIds)
	if err != nil {
		return err
	}

	_, err = db.courses().UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": courseOids}},
		bson.M{"$addToSet": bson.M{"members": userOid}},
	)
	return wrapErr(err)
}

func (db *MongoStudiumRepository) RemoveUserFromCourses(ctx context.Context, userId string, courseIds []string) error {
	userOid, err := objectId(userId)
	if err != nil {
		return err
	}
	courseOids, err := objectIds(courseIds)
	if err != nil {
		return err
	}

	_, err = db.courses().UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": courseOids}},
		bson.M{"$pull": bson.M{"members": userOid}},
	)
	return wrapErr(err)
}

func (db *MongoStudiumRepository) AttachCourseFile(ctx context.Context, courseId, fileId string) error {
	fileOid, err := objectId(fileId)
	if err != nil {
		return err
	}
	return db.updateCourseById(ctx, courseId, bson.M{
		"$push": bson.M{"files": fileOid},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (db *MongoStudiumRepository) AppendEvent(ctx context.Context, params CreateEventParams) (Event, error) {
	event := Event{
		Id:          primitive.NewObjectID(),
		Title:       params.Title,
		Description: params.Description,
		Start:       params.Start,
		End:         params.End,
		Url:         params.Url,
		ClassName:   params.ClassName,
		InCall:      []primitive.ObjectID{},
	}

	err := db.updateCourseById(ctx, params.CourseId, bson.M{
		"$push": bson.M{"events": event},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return Event{}, err
	}
	return event, nil
}

func (db *MongoStudiumRepository) SetEventUrl(ctx context.Context, courseId, eventId, url string) error {
	courseOid, err := objectId(courseId)
	if err != nil {
		return err
	}
	eventOid, err := objectId(eventId)
	if err != nil {
		return err
	}

	res, err := db.courses().UpdateOne(ctx,
		bson.M{"_id": courseOid, "events._id": eventOid},
		bson.M{"$set": bson.M{"events.$.url": url, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return wrapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *MongoStudiumRepository) AddEventParticipant(ctx context.Context, courseId, eventId, userId string) error {
	courseOid, err := objectId(courseId)
	if err != nil {
		return err
	}
	eventOid, err := objectId(eventId)
	if err != nil {
		return err
	}
	userOid, err := objectId(userId)
	if err != nil {
		return err
	}

	// $addToSet keeps the roster duplicate-free even when a client
	// replays join-call.
	res, err := db.courses().UpdateOne(ctx,
		bson.M{"_id": courseOid, "events._id": eventOid},
		bson.M{"$addToSet": bson.M{"events.$.inCall": userOid}},
	)
	if err != nil {
		return wrapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *MongoStudiumRepository) RemoveEventParticipant(ctx context.Context, courseId, eventId, userId string) error {
	courseOid, err := objectId(courseId)
	if err != nil {
		return err
	}
	eventOid, err := objectId(eventId)
	if err != nil {
		return err
	}
	userOid, err := objectId(userId)
	if err != nil {
		return err
	}

	res, err := db.courses().UpdateOne(ctx,
		bson.M{"_id": courseOid, "events._id": eventOid},
		bson.M{"$pull": bson.M{"events.$.inCall": userOid}},
	)
	if err != nil {
		return wrapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveParticipantFromAllEvents pulls the user out of every event roster
// across all courses in a single atomic update. Matching zero documents is
// not an error.
func (db *MongoStudiumRepository) RemoveParticipantFromAllEvents(ctx context.Context, userId string) error {
	userOid, err := objectId(userId)
	if err != nil {
		return err
	}

	_, err = db.courses().UpdateMany(ctx,
		bson.M{"events.inCall": userOid},
		bson.M{"$pull": bson.M{"events.$[].inCall": userOid}},
	)
	return wrapErr(err)
}

func (db *MongoStudiumRepository) CreateConversation(ctx context.Context, params CreateConversationParams) (Conversation, error) {
	memberOids, err := objectIds(params.Members)
	if err != nil {
		return Conversation{}, err
	}

	now := time.Now().UTC()
	conversation := Conversation{
		Id:        primitive.NewObjectID(),
		Name:      params.Name,
		Members:   memberOids,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := db.conversations().InsertOne(ctx, conversation); err != nil {
		return Conversation{}, wrapErr(err)
	}
	return conversation, nil
}

func (db *MongoStudiumRepository) GetConversationById(ctx context.Context, conversationId string) (Conversation, error) {
	oid, err := objectId(conversationId)
	if err != nil {
		return Conversation{}, err
	}

	var conversation Conversation
	err = db.conversations().FindOne(ctx, bson.M{"_id": oid}).Decode(&conversation)
	return conversation, wrapErr(err)
}

func (db *MongoStudiumRepository) listConversations(ctx context.Context, filter bson.M) ([]Conversation, error) {
	cur, err := db.conversations().Find(ctx, filter)
	if err != nil {
		return nil, wrapErr(err)
	}

	var conversations []Conversation
	if err := cur.All(ctx, &conversations); err != nil {
		return nil, wrapErr(err)
	}
	return conversations, nil
}

func (db *MongoStudiumRepository) ListConversations(ctx context.Context) ([]Conversation, error) {
	return db.listConversations(ctx, bson.M{})
}

func (db *MongoStudiumRepository) ListConversationsForMember(ctx context.Context, userId string) ([]Conversation, error) {
	oid, err := objectId(userId)
	if err != nil {
		return nil, err
	}
	return db.listConversations(ctx, bson.M{"members": oid})
}

// AppendMessage pushes a message onto the conversation's log. The push is a
// single-document atomic update, which is what preserves append order under
// concurrent senders.
func (db *MongoStudiumRepository) AppendMessage(ctx context.Context, conversationId, senderId, text string, at time.Time) (Message, error) {
	convOid, err := objectId(conversationId)
	if err != nil {
		return Message{}, err
	}
	senderOid, err := objectId(senderId)
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		Id:        primitive.NewObjectID(),
		Sender:    senderOid,
		Text:      text,
		CreatedAt: at,
	}

	res, err := db.conversations().UpdateByID(ctx, convOid, bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"updatedAt": at},
	})
	if err != nil {
		return Message{}, wrapErr(err)
	}
	if res.MatchedCount == 0 {
		return Message{}, ErrNotFound
	}
	return msg, nil
}

func (db *MongoStudiumRepository) CreateExam(ctx context.Context, params CreateExamParams) (Exam, error) {
	eventOid, err := objectId(params.EventId)
	if err != nil {
		return Exam{}, err
	}

	now := time.Now().UTC()
	exam := Exam{
		Id:        primitive.NewObjectID(),
		Title:     params.Title,
		Json:      params.Json,
		EventId:   eventOid,
		Results:   []ExamResult{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := db.exams().InsertOne(ctx, exam); err != nil {
		return Exam{}, wrapErr(err)
	}
	return exam, nil
}

func (db *MongoStudiumRepository) GetExamByEventId(ctx context.Context, eventId string) (Exam, error) {
	oid, err := objectId(eventId)
	if err != nil {
		return Exam{}, err
	}

	var exam Exam
	err = db.exams().FindOne(ctx, bson.M{"eventId": oid}).Decode(&exam)
	return exam, wrapErr(err)
}

func (db *MongoStudiumRepository) UpdateExam(ctx context.Context, examId, title string, examJson map[string]any) (Exam, error) {
	oid, err := objectId(examId)
	if err != nil {
		return Exam{}, err
	}

	var exam Exam
	err = db.exams().FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"title": title, "json": examJson, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&exam)
	return exam, wrapErr(err)
}

// SaveExamResult updates the user's existing result in place, or appends a
// new one when the user has not submitted yet.
func (db *MongoStudiumRepository) SaveExamResult(ctx context.Context, examId, userId string, resultJson map[string]any) (Exam, error) {
	examOid, err := objectId(examId)
	if err != nil {
		return Exam{}, err
	}
	userOid, err := objectId(userId)
	if err != nil {
		return Exam{}, err
	}

	var exam Exam
	err = db.exams().FindOneAndUpdate(ctx,
		bson.M{"_id": examOid, "results.userId": userOid},
		bson.M{"$set": bson.M{"results.$.json": resultJson, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&exam)
	if err == nil {
		return exam, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return Exam{}, wrapErr(err)
	}

	result := ExamResult{
		UserId:    userOid,
		Json:      resultJson,
		CreatedAt: time.Now().UTC(),
	}
	err = db.exams().FindOneAndUpdate(ctx,
		bson.M{"_id": examOid},
		bson.M{"$push": bson.M{"results": result}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&exam)
	return exam, wrapErr(err)
}

func (db *MongoStudiumRepository) ListExamsForParticipant(ctx context.Context, userId string) ([]Exam, error) {
	oid, err := objectId(userId)
	if err != nil {
		return nil, err
	}

	cur, err := db.exams().Find(ctx, bson.M{"results.userId": oid})
	if err != nil {
		return nil, wrapErr(err)
	}

	var exams []Exam
	if err := cur.All(ctx, &exams); err != nil {
		return nil, wrapErr(err)
	}
	return exams, nil
}

func (db *MongoStudiumRepository) IncrementLoginCount(ctx context.Context, date time.Time) error {
	_, err := db.loginCounts().UpdateOne(ctx,
		bson.M{"date": date},
		bson.M{"$inc": bson.M{"count": 1}},
		options.Update().SetUpsert(true),
	)
	return wrapErr(err)
}

func (db *MongoStudiumRepository) ListLoginCounts(ctx context.Context) ([]LoginCount, error) {
	cur, err := db.loginCounts().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, wrapErr(err)
	}

	var counts []LoginCount
	if err := cur.All(ctx, &counts); err != nil {
		return nil, wrapErr(err)
	}
	return counts, nil
}

type gridFile struct {
	Id         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"filename"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Metadata   struct {
		OriginalFilename string `bson:"originalFilename"`
	} `bson:"metadata"`
}

func (f gridFile) info() FileInfo {
	return FileInfo{
		Id:           f.Id.Hex(),
		Name:         f.Name,
		OriginalName: f.Metadata.OriginalFilename,
		Size:         f.Length,
		UploadedAt:   f.UploadDate,
	}
}

func (db *MongoStudiumRepository) UploadFile(ctx context.Context, filename, originalName string, r io.Reader) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{"originalFilename": originalName})
	id := primitive.NewObjectID()
	if err := db.bucket.UploadFromStreamWithID(id, filename, r, opts); err != nil {
		return "", wrapErr(err)
	}
	return id.Hex(), nil
}

func (db *MongoStudiumRepository) DownloadFile(ctx context.Context, fileId string, w io.Writer) (FileInfo, error) {
	oid, err := objectId(fileId)
	if err != nil {
		return FileInfo{}, err
	}

	cur, err := db.bucket.Find(bson.M{"_id": oid})
	if err != nil {
		return FileInfo{}, wrapErr(err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		return FileInfo{}, ErrNotFound
	}

	var file gridFile
	if err := cur.Decode(&file); err != nil {
		return FileInfo{}, wrapErr(err)
	}

	if _, err := db.bucket.DownloadToStream(oid, w); err != nil {
		return FileInfo{}, wrapErr(err)
	}
	return file.info(), nil
}

func (db *MongoStudiumRepository) DeleteFile(ctx context.Context, fileId string) error {
	oid, err := objectId(fileId)
	if err != nil {
		return err
	}

	if err := db.bucket.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (db *MongoStudiumRepository) ListCourseFiles(ctx context.Context, fileIds []string) ([]FileInfo, error) {
	oids, err := objectIds(fileIds)
	if err != nil {
		return nil, err
	}

	cur, err := db.bucket.Find(bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cur.Close(ctx)

	var infos []FileInfo
	for cur.Next(ctx) {
		var file gridFile
		if err := cur.Decode(&file); err != nil {
			return nil, wrapErr(err)
		}
		infos = append(infos, file.info())
	}
	return infos, cur.Err()
}
